package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/quotebuy/internal/submission"
)

// RecordConflictTask carries a paid submission that could not be stored
// until the audit log has a row for it.
type RecordConflictTask struct {
	ChargeID   string    `json:"charge_id"`
	Normalized string    `json:"normalized"`
	Author     string    `json:"author"`
	Cause      string    `json:"cause"`
	At         time.Time `json:"at"`
}

// Config returns the queue configuration for conflict recording tasks.
func (t RecordConflictTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "record_payment_conflict",
		MaxAttempts: 10,
		Backoff:     30 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
		},
	}
}

func (t RecordConflictTask) conflict() submission.Conflict {
	return submission.Conflict{
		ChargeID:   t.ChargeID,
		Normalized: t.Normalized,
		Author:     t.Author,
		Cause:      t.Cause,
		At:         t.At,
	}
}

// RecordConflictProcessor writes queued conflicts through recorder.
func RecordConflictProcessor(recorder submission.ConflictReporter) backlite.QueueProcessor[RecordConflictTask] {
	return func(ctx context.Context, task RecordConflictTask) error {
		if recorder == nil {
			return fmt.Errorf("conflict recorder not configured")
		}
		if err := recorder.ReportConflict(ctx, task.conflict()); err != nil {
			return fmt.Errorf("record conflict: %w", err)
		}
		log.Info("Recorded payment conflict", "charge_id", task.ChargeID)
		return nil
	}
}

// NewRecordConflictQueue creates a backlite queue for conflict recording tasks.
func NewRecordConflictQueue(recorder submission.ConflictReporter) backlite.Queue {
	return backlite.NewQueue(RecordConflictProcessor(recorder))
}

// Enqueuer is the part of Client the conflict reporter needs.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// ConflictQueue reports conflicts by enqueueing them, so a slow or locked
// audit table never blocks the request that hit the conflict.
type ConflictQueue struct {
	queue Enqueuer
	// fallback records synchronously when enqueueing fails.
	fallback submission.ConflictReporter
}

func NewConflictQueue(queue Enqueuer, fallback submission.ConflictReporter) *ConflictQueue {
	return &ConflictQueue{queue: queue, fallback: fallback}
}

func (q *ConflictQueue) ReportConflict(ctx context.Context, c submission.Conflict) error {
	task := RecordConflictTask{
		ChargeID:   c.ChargeID,
		Normalized: c.Normalized,
		Author:     c.Author,
		Cause:      c.Cause,
		At:         c.At,
	}
	_, err := q.queue.Add(task).Ctx(ctx).Save()
	if err == nil {
		return nil
	}
	log.Warn("Failed to enqueue payment conflict, recording inline", "charge_id", c.ChargeID, "err", err)
	if q.fallback == nil {
		return fmt.Errorf("enqueue conflict: %w", err)
	}
	return q.fallback.ReportConflict(ctx, c)
}
