package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type timeoutGateway struct {
	next    Gateway
	timeout time.Duration
}

// WithTimeout bounds every charge made through next. A charge that does not
// complete in time is reported as a connection failure; the provider call is
// not revoked.
func WithTimeout(next Gateway, timeout time.Duration) Gateway {
	if timeout <= 0 {
		return next
	}
	return &timeoutGateway{next: next, timeout: timeout}
}

func (g *timeoutGateway) Charge(ctx context.Context, charge Charge) ChargeResult {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan ChargeResult, 1)
	go func() {
		done <- g.next.Charge(ctx, charge)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failure(KindConnection, fmt.Errorf("charge did not complete within %s: %w", g.timeout, ctx.Err()))
		}
		return Failure(KindConnection, fmt.Errorf("charge abandoned: %w", ctx.Err()))
	}
}
