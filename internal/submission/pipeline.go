package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/quotebuy/internal/database/quotes"
	"github.com/mrlokans/quotebuy/internal/entities"
	"github.com/mrlokans/quotebuy/internal/markup"
	"github.com/mrlokans/quotebuy/internal/payment"
)

// State is a step of a submission.
type State string

const (
	StateDraft         State = "draft"
	StateValidating    State = "validating"
	StateRejected      State = "rejected"
	StateCharging      State = "charging"
	StatePaymentFailed State = "payment_failed"
	StatePersisting    State = "persisting"
	StateCommitted     State = "committed"
	StateConflict      State = "conflict"
	StatePreviewReady  State = "preview_ready"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StatePaymentFailed, StateCommitted, StateConflict, StatePreviewReady:
		return true
	}
	return false
}

// QuoteStore is the store the pipeline validates against and commits to.
type QuoteStore interface {
	QuoteLookup
	Insert(ctx context.Context, q quotes.NewQuote) (*entities.Quote, error)
}

// Conflict describes a paid submission that could not be stored.
type Conflict struct {
	ChargeID   string
	Normalized string
	Author     string
	Cause      string
	At         time.Time
}

// ConflictReporter durably records conflicts for reconciliation.
type ConflictReporter interface {
	ReportConflict(ctx context.Context, c Conflict) error
}

// AuditLogger records purchases and failed charges.
type AuditLogger interface {
	LogPurchase(ctx context.Context, quote *entities.Quote, chargeID string)
	LogPaymentFailure(ctx context.Context, kind payment.FailureKind, err error, normalized, author string)
}

// Observer is told about every finished submission.
type Observer interface {
	ObserveOutcome(state State)
	ObserveChargeFailure(kind payment.FailureKind)
}

// PaymentConfig is the fixed price of a quote.
type PaymentConfig struct {
	AmountCents int64
	Currency    string
	Description string
}

// Preview is what a submission would look like once published.
type Preview struct {
	Quote  string
	Author string
	Now    time.Time
}

// Outcome is the terminal result of Buy or Preview.
type Outcome struct {
	State       State
	Trace       []State
	Quote       *entities.Quote
	Preview     *Preview
	Errors      []FieldError
	ChargeID    string
	FailureKind payment.FailureKind
	Err         error
}

func (o *Outcome) advance(s State) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithConflictReporter(r ConflictReporter) Option {
	return func(p *Pipeline) { p.conflicts = r }
}

func WithAuditLogger(a AuditLogger) Option {
	return func(p *Pipeline) { p.audit = a }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// Pipeline runs the buy and preview flows. It keeps no per-submission state
// and is safe for concurrent use.
type Pipeline struct {
	validator *Validator
	markup    *markup.Processor
	store     QuoteStore
	gateway   payment.Gateway
	price     PaymentConfig

	conflicts ConflictReporter
	audit     AuditLogger
	observer  Observer
	now       func() time.Time
	log       *log.Logger
}

func NewPipeline(processor *markup.Processor, store QuoteStore, gateway payment.Gateway, price PaymentConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		validator: NewValidator(processor, store),
		markup:    processor,
		store:     store,
		gateway:   gateway,
		price:     price,
		now:       time.Now,
		log:       log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Buy validates, charges and stores a submission. A submission that fails
// validation is never charged.
func (p *Pipeline) Buy(ctx context.Context, s Submission, token string) Outcome {
	out := Outcome{State: StateDraft, Trace: []State{StateDraft}}
	defer p.observe(&out)

	out.advance(StateValidating)
	res, err := p.validator.Validate(ctx, s)
	if err != nil {
		out.Err = err
		out.advance(StateRejected)
		p.log.Error("Validation could not complete", "err", err)
		return out
	}
	if !res.Valid() {
		out.Errors = res.Errors
		out.Err = res.Err()
		out.advance(StateRejected)
		return out
	}

	// Once the charge starts the customer may be billed, so neither the
	// charge nor the insert that follows is tied to the client connection.
	detached := context.WithoutCancel(ctx)

	out.advance(StateCharging)
	charge := payment.NewCharge(p.price.AmountCents, p.price.Currency, token, p.price.Description)
	var result payment.ChargeResult
	if token == "" {
		result = payment.Failure(payment.KindInvalidRequest, payment.ErrMissingToken)
	} else {
		result = p.gateway.Charge(detached, charge)
	}
	if !result.OK() && result.Kind == "" {
		result = payment.Failure(payment.KindConnection, payment.ErrMissingChargeID)
	}
	if !result.OK() {
		out.FailureKind = result.Kind
		out.Err = &PaymentError{Kind: result.Kind, Err: result.Err}
		out.advance(StatePaymentFailed)
		p.log.Warn("Charge failed", "kind", result.Kind, "idempotency_key", charge.IdempotencyKey, "err", result.Err)
		if p.observer != nil {
			p.observer.ObserveChargeFailure(result.Kind)
		}
		if p.audit != nil {
			p.audit.LogPaymentFailure(detached, result.Kind, result.Err, res.Stripped, res.Author)
		}
		return out
	}
	out.ChargeID = result.ChargeID

	out.advance(StatePersisting)
	quote, err := p.store.Insert(detached, quotes.NewQuote{
		Text:       res.Rendered,
		Normalized: res.Stripped,
		Author:     res.Author,
		Created:    p.now(),
	})
	if err != nil {
		out.Err = &StorageConflictError{ChargeID: result.ChargeID, Cause: err}
		out.advance(StateConflict)
		p.reportConflict(detached, result.ChargeID, res, err)
		return out
	}

	out.Quote = quote
	out.advance(StateCommitted)
	p.log.Info("Quote published", "id", quote.ID, "author", quote.Author, "charge_id", result.ChargeID)
	if p.audit != nil {
		p.audit.LogPurchase(detached, quote, result.ChargeID)
	}
	return out
}

// Preview validates a submission and renders it without charging or storing.
func (p *Pipeline) Preview(ctx context.Context, s Submission) Outcome {
	out := Outcome{State: StateDraft, Trace: []State{StateDraft}}
	defer p.observe(&out)

	out.advance(StateValidating)
	res, err := p.validator.Validate(ctx, s)
	if err != nil {
		out.Err = err
		out.advance(StateRejected)
		return out
	}
	if !res.Valid() {
		out.Errors = res.Errors
		out.Err = res.Err()
		out.advance(StateRejected)
		return out
	}

	out.Preview = &Preview{Quote: res.Rendered, Author: res.Author, Now: p.now()}
	out.advance(StatePreviewReady)
	return out
}

func (p *Pipeline) reportConflict(ctx context.Context, chargeID string, res Result, cause error) {
	level := "duplicate"
	if !errors.Is(cause, quotes.ErrDuplicate) {
		level = "storage"
	}
	p.log.Error("Charge succeeded but quote was not stored",
		"charge_id", chargeID,
		"cause", level,
		"normalized", res.Stripped,
		"err", cause,
	)

	if p.conflicts == nil {
		return
	}
	err := p.conflicts.ReportConflict(ctx, Conflict{
		ChargeID:   chargeID,
		Normalized: res.Stripped,
		Author:     res.Author,
		Cause:      cause.Error(),
		At:         p.now(),
	})
	if err != nil {
		// Last resort: the log line above is the only record left.
		p.log.Error("Failed to record payment conflict", "charge_id", chargeID, "err", fmt.Errorf("report conflict: %w", err))
	}
}

func (p *Pipeline) observe(out *Outcome) {
	if p.observer != nil {
		p.observer.ObserveOutcome(out.State)
	}
}
