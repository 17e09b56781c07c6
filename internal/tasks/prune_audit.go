package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a prune task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditPruner deletes audit events older than a retention window. Unresolved
// payment conflicts must survive regardless of age.
type AuditPruner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// PruneAuditLogTask trims the audit log. The reconcile sweep enqueues one per
// run, so a failed prune is simply retried by the next sweep.
type PruneAuditLogTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PruneAuditLogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_log",
		MaxAttempts: 1,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration: 6 * time.Hour,
		},
	}
}

// Retention is the age past which events are pruned.
func (t PruneAuditLogTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

var errNoPruner = errors.New("audit pruner not configured")

func PruneAuditLogProcessor(pruner AuditPruner) backlite.QueueProcessor[PruneAuditLogTask] {
	return func(ctx context.Context, task PruneAuditLogTask) error {
		if pruner == nil {
			return errNoPruner
		}
		retention := task.Retention()
		deleted, err := pruner.DeleteOldEvents(ctx, retention)
		if err != nil {
			log.Error("Pruning audit log failed", "err", err)
			return err
		}
		if deleted > 0 {
			log.Info("Pruned audit log", "deleted", deleted, "retention", retention)
		}
		return nil
	}
}

func NewPruneAuditLogQueue(pruner AuditPruner) backlite.Queue {
	return backlite.NewQueue(PruneAuditLogProcessor(pruner))
}
