package entities

import "time"

type AuditEventType string

const (
	AuditEventPurchase        AuditEventType = "purchase"
	AuditEventPaymentFailure  AuditEventType = "payment_failure"
	AuditEventPaymentConflict AuditEventType = "payment_conflict"
)

type AuditStatus string

const (
	AuditStatusSuccess    AuditStatus = "success"
	AuditStatusFailed     AuditStatus = "failed"
	AuditStatusUnresolved AuditStatus = "unresolved"
	AuditStatusResolved   AuditStatus = "resolved"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`
	Description string         `gorm:"size:500" json:"description"`
	ChargeID    string         `gorm:"index;size:255" json:"charge_id,omitempty"`
	FailureKind string         `gorm:"size:50" json:"failure_kind,omitempty"`
	QuoteID     *uint          `gorm:"index" json:"quote_id,omitempty"`
	Normalized  string         `gorm:"type:text" json:"normalized,omitempty"` // stripped quote text
	Author      string         `gorm:"size:32" json:"author,omitempty"`
	Status      AuditStatus    `gorm:"index;size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
