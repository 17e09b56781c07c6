// Package payment charges payment tokens for quote purchases.
//
// Every provider error is normalised into one of four failure kinds at this
// boundary. Nothing in this package retries a charge.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// FailureKind classifies a rejected charge for logging and metrics.
type FailureKind string

const (
	KindInvalidRequest FailureKind = "invalid_request"
	KindAuthentication FailureKind = "authentication"
	KindConnection     FailureKind = "connection"
	KindCardDeclined   FailureKind = "card_declined"
)

var (
	// ErrNotConfigured is returned by the gateway used when no API key is set.
	ErrNotConfigured = errors.New("payment gateway is not configured")

	// ErrMissingToken means the form arrived without a card token.
	ErrMissingToken = errors.New("missing payment token")

	// ErrMissingChargeID means the provider reported success without an ID
	// to trace the charge by.
	ErrMissingChargeID = errors.New("charge succeeded without a charge id")
)

// Charge describes a single charge attempt.
type Charge struct {
	AmountCents    int64
	Currency       string
	Token          string
	Description    string
	IdempotencyKey string
}

// NewCharge builds a charge with a fresh idempotency key.
func NewCharge(amountCents int64, currency, token, description string) Charge {
	return Charge{
		AmountCents:    amountCents,
		Currency:       currency,
		Token:          token,
		Description:    description,
		IdempotencyKey: uuid.NewString(),
	}
}

// ChargeResult is either a success carrying the provider charge ID or a
// failure carrying its kind.
type ChargeResult struct {
	ChargeID string
	Kind     FailureKind
	Err      error
}

// Success returns a successful result. A success without a charge ID cannot
// be traced and is reported as a connection failure instead.
func Success(chargeID string) ChargeResult {
	if chargeID == "" {
		return Failure(KindConnection, ErrMissingChargeID)
	}
	return ChargeResult{ChargeID: chargeID}
}

// Failure returns a failed result. err is kept for logging only.
func Failure(kind FailureKind, err error) ChargeResult {
	if err == nil {
		err = fmt.Errorf("charge failed: %s", kind)
	}
	return ChargeResult{Kind: kind, Err: err}
}

// OK reports whether the charge succeeded with a traceable charge ID.
func (r ChargeResult) OK() bool {
	return r.Kind == "" && r.Err == nil && r.ChargeID != ""
}

// Gateway charges a payment token.
type Gateway interface {
	Charge(ctx context.Context, charge Charge) ChargeResult
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, charge Charge) ChargeResult

func (f GatewayFunc) Charge(ctx context.Context, charge Charge) ChargeResult {
	return f(ctx, charge)
}

// Unconfigured rejects every charge. It is used when no API key is set so
// the rest of the application keeps working.
type Unconfigured struct{}

func (Unconfigured) Charge(context.Context, Charge) ChargeResult {
	return Failure(KindAuthentication, ErrNotConfigured)
}
