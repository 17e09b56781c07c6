package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// chargeCreator is the subset of the Stripe charges client we use.
type chargeCreator interface {
	New(params *stripe.ChargeParams) (*stripe.Charge, error)
}

// StripeGateway charges card tokens through the Stripe API.
type StripeGateway struct {
	charges chargeCreator
}

// NewStripeGateway creates a gateway authenticated with apiKey.
func NewStripeGateway(apiKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeGateway{charges: sc.Charges}
}

func (g *StripeGateway) Charge(ctx context.Context, charge Charge) ChargeResult {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(charge.AmountCents),
		Currency:    stripe.String(charge.Currency),
		Description: stripe.String(charge.Description),
		Source:      &stripe.PaymentSourceSourceParams{Token: stripe.String(charge.Token)},
	}
	params.Context = ctx
	if charge.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(charge.IdempotencyKey)
	}

	ch, err := g.charges.New(params)
	if err != nil {
		return Failure(classifyStripeError(err), err)
	}
	return Success(ch.ID)
}

// classifyStripeError maps a Stripe client error onto a FailureKind.
func classifyStripeError(err error) FailureKind {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		// Transport errors, cancelled or expired contexts.
		return KindConnection
	}

	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return KindCardDeclined
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized || stripeErr.HTTPStatusCode == http.StatusForbidden:
		return KindAuthentication
	case stripeErr.Type == stripe.ErrorTypeAPI || stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
		return KindConnection
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests:
		return KindConnection
	default:
		return KindInvalidRequest
	}
}
