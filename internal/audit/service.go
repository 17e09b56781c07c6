package audit

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/quotebuy/internal/database/audit"
	"github.com/mrlokans/quotebuy/internal/entities"
	"github.com/mrlokans/quotebuy/internal/payment"
	"github.com/mrlokans/quotebuy/internal/submission"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	now  func() time.Time
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			log.Error("Failed to log audit event", "type", event.EventType, "err", err)
		}
	}()
}

// Flush waits for pending LogAsync writes.
func (s *Service) Flush() {
	s.wg.Wait()
}

// LogPurchase records a committed, paid quote.
func (s *Service) LogPurchase(ctx context.Context, quote *entities.Quote, chargeID string) {
	id := quote.ID
	s.LogAsync(ctx, &entities.AuditEvent{
		EventType:   entities.AuditEventPurchase,
		Action:      "quote_purchase",
		Description: truncate(fmt.Sprintf("Quote %d published", quote.ID), 500),
		ChargeID:    chargeID,
		QuoteID:     &id,
		Normalized:  quote.Normalized,
		Author:      quote.Author,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogPaymentFailure records a charge the gateway rejected.
func (s *Service) LogPaymentFailure(ctx context.Context, kind payment.FailureKind, err error, normalized, author string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventPaymentFailure,
		Action:      "charge_" + string(kind),
		Description: "Charge failed",
		FailureKind: string(kind),
		Normalized:  normalized,
		Author:      author,
		Status:      entities.AuditStatusFailed,
	}
	if err != nil {
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(ctx, event)
}

// ReportConflict durably records a paid submission that could not be
// stored. It writes synchronously: the caller must know whether the record
// exists.
func (s *Service) ReportConflict(ctx context.Context, c submission.Conflict) error {
	at := c.At
	if at.IsZero() {
		at = s.now()
	}
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventPaymentConflict,
		Action:      "charge_without_quote",
		Description: "Charge succeeded but quote was not stored",
		ChargeID:    c.ChargeID,
		Normalized:  c.Normalized,
		Author:      c.Author,
		Status:      entities.AuditStatusUnresolved,
		ErrorMsg:    truncate(c.Cause, 500),
		CreatedAt:   at,
	}
	if err := s.repo.LogEvent(ctx, event); err != nil {
		return fmt.Errorf("record conflict for charge %s: %w", c.ChargeID, err)
	}
	return nil
}

// ListConflicts returns payment conflicts still awaiting reconciliation.
func (s *Service) ListConflicts(ctx context.Context) ([]entities.AuditEvent, error) {
	return s.repo.GetUnresolvedConflicts(ctx)
}

// ResolveConflict marks a payment conflict as reconciled.
func (s *Service) ResolveConflict(ctx context.Context, id uint) error {
	return s.repo.ResolveConflict(ctx, id, s.now())
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(ctx, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to maxLen characters without splitting a rune.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
