package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/quotebuy/internal/entities"
)

// ErrNotConflict is returned when resolving an event that is not an
// unresolved payment conflict.
var ErrNotConflict = errors.New("event is not an unresolved payment conflict")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEventsByType retrieves audit events filtered by type, most recent first.
func (r *Repository) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{}).Where("event_type = ?", eventType)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetUnresolvedConflicts returns payment conflicts still awaiting
// reconciliation, oldest first.
func (r *Repository) GetUnresolvedConflicts(ctx context.Context) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.WithContext(ctx).
		Where("event_type = ? AND status = ?", entities.AuditEventPaymentConflict, entities.AuditStatusUnresolved).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// ResolveConflict marks a payment conflict as reconciled.
func (r *Repository) ResolveConflict(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.AuditEvent{}).
		Where("id = ? AND event_type = ? AND status = ?", id, entities.AuditEventPaymentConflict, entities.AuditStatusUnresolved).
		Updates(map[string]any{
			"status":      entities.AuditStatusResolved,
			"resolved_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("resolve conflict %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotConflict
	}
	return nil
}

// DeleteOldEvents removes audit events older than the specified time.
// Unresolved payment conflicts are kept regardless of age.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Where("NOT (event_type = ? AND status = ?)", entities.AuditEventPaymentConflict, entities.AuditStatusUnresolved).
		Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

// GetEventByID retrieves a single audit event by ID.
func (r *Repository) GetEventByID(ctx context.Context, id uint) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	err := r.db.WithContext(ctx).First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
