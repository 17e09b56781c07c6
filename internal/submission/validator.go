package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/quotebuy/internal/entities"
	"github.com/mrlokans/quotebuy/internal/markup"
)

const (
	MinQuoteLength  = 1
	MaxQuoteLength  = 140
	MaxAuthorLength = 32
)

// Submission is the raw form input.
type Submission struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// QuoteLookup is the read-only view of the store the validator needs.
type QuoteLookup interface {
	ExistsNormalized(ctx context.Context, normalized string) (bool, error)
}

// Result is the outcome of validating a submission. Rendered and Stripped are
// only meaningful when Errors is empty.
type Result struct {
	Rendered string
	Stripped string
	Author   string
	Errors   []FieldError
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the collected failures as a *ValidationError, or nil.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validator checks submissions against the length and uniqueness rules.
type Validator struct {
	markup *markup.Processor
	lookup QuoteLookup
}

func NewValidator(processor *markup.Processor, lookup QuoteLookup) *Validator {
	return &Validator{markup: processor, lookup: lookup}
}

// Validate runs every rule. Rules on one field stop at the first failure, in
// the order required, length, duplicate. The returned error is only set when
// a rule could not be evaluated, e.g. the store was unreachable.
func (v *Validator) Validate(ctx context.Context, s Submission) (Result, error) {
	form := Submission{
		Quote:  strings.TrimSpace(s.Quote),
		Author: strings.TrimSpace(s.Author),
	}
	stripped := v.markup.Strip(form.Quote)

	err := validation.ValidateStructWithContext(ctx, &form,
		validation.Field(&form.Quote,
			validation.Required.Error("This field is required."),
			validation.By(lengthRule(stripped)),
			validation.WithContext(v.duplicateRule(stripped)),
		),
		validation.Field(&form.Author,
			validation.RuneLength(0, MaxAuthorLength).Error(fmt.Sprintf("Field cannot be longer than %d characters.", MaxAuthorLength)),
		),
	)

	result := Result{Stripped: stripped, Author: form.Author}
	if result.Author == "" {
		result.Author = entities.DefaultAuthor
	}

	if err != nil {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return result, fmt.Errorf("validate submission: %w", internal.InternalError())
		}
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return result, fmt.Errorf("validate submission: %w", err)
		}
		result.Errors = collectFieldErrors(fieldErrs)
		return result, nil
	}

	result.Rendered = v.markup.Render(form.Quote)
	return result, nil
}

func lengthRule(stripped string) validation.RuleFunc {
	return func(any) error {
		n := markup.Length(stripped)
		if n < MinQuoteLength || n > MaxQuoteLength {
			return &FieldError{
				Field:   "quote",
				Reason:  ReasonLength,
				Message: fmt.Sprintf("Quote is not a valid length (%d characters).", n),
			}
		}
		return nil
	}
}

func (v *Validator) duplicateRule(stripped string) validation.RuleWithContextFunc {
	return func(ctx context.Context, _ any) error {
		if v.lookup == nil {
			return nil
		}
		exists, err := v.lookup.ExistsNormalized(ctx, stripped)
		if err != nil {
			return validation.NewInternalError(err)
		}
		if exists {
			return &FieldError{
				Field:   "quote",
				Reason:  ReasonDuplicate,
				Message: "Quote exists, come up with something original.",
			}
		}
		return nil
	}
}

// fieldOrder fixes the order errors are reported in.
var fieldOrder = []string{"quote", "author"}

func collectFieldErrors(errs validation.Errors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, field := range fieldOrder {
		err, ok := errs[field]
		if !ok || err == nil {
			continue
		}
		var fe *FieldError
		if errors.As(err, &fe) {
			out = append(out, *fe)
			continue
		}
		reason := ReasonLength
		var ve validation.Error
		if errors.As(err, &ve) && ve.Code() == validation.ErrRequired.Code() {
			reason = ReasonStructural
		}
		out = append(out, FieldError{Field: field, Reason: reason, Message: err.Error()})
	}
	return out
}
