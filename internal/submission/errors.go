package submission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/quotebuy/internal/database/quotes"
	"github.com/mrlokans/quotebuy/internal/payment"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation indicates the submission broke a content rule.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate indicates the stripped quote text is already published.
	ErrDuplicate = quotes.ErrDuplicate

	// ErrPayment indicates the gateway rejected the charge.
	ErrPayment = errors.New("payment failed")

	// ErrStorageConflict indicates a charge succeeded but the quote could not
	// be stored. Money has moved and nothing was published.
	ErrStorageConflict = errors.New("storage conflict after payment")
)

// Reason classifies a FieldError.
type Reason string

const (
	ReasonStructural Reason = "structural" // required field missing
	ReasonLength     Reason = "length"     // outside the allowed character range
	ReasonDuplicate  Reason = "duplicate"  // same stripped text already stored
)

// FieldError is one failed rule for one form field.
type FieldError struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// ValidationError collects every failed rule of a submission.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrValidation, plus ErrDuplicate when a duplicate was found.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrValidation}
	if e.Has(ReasonDuplicate) {
		errs = append(errs, ErrDuplicate)
	}
	return errs
}

// Has reports whether any field failed for reason.
func (e *ValidationError) Has(reason Reason) bool {
	for _, fe := range e.Errors {
		if fe.Reason == reason {
			return true
		}
	}
	return false
}

// First returns the error the pipeline stops on.
func (e *ValidationError) First() FieldError {
	if len(e.Errors) == 0 {
		return FieldError{}
	}
	return e.Errors[0]
}

// PaymentError is a charge the gateway rejected.
type PaymentError struct {
	Kind payment.FailureKind
	Err  error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("payment failed (%s)", e.Kind)
}

func (e *PaymentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPayment}
	}
	return []error{ErrPayment, e.Err}
}

// StorageConflictError is a paid submission that could not be stored.
type StorageConflictError struct {
	ChargeID string
	Cause    error
}

func (e *StorageConflictError) Error() string {
	return fmt.Sprintf("charge %s succeeded but quote was not stored: %v", e.ChargeID, e.Cause)
}

func (e *StorageConflictError) Unwrap() error {
	return ErrStorageConflict
}
