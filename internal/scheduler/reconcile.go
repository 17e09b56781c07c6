package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/quotebuy/internal/entities"
	"github.com/mrlokans/quotebuy/internal/tasks"
)

// scheduleParser accepts five-field expressions and descriptors like @hourly.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ConflictLister returns payment conflicts that are still unresolved.
type ConflictLister interface {
	ListConflicts(ctx context.Context) ([]entities.AuditEvent, error)
}

// ConflictGauge is told how many conflicts remain after each sweep.
type ConflictGauge interface {
	SetUnresolvedConflicts(n int)
}

// Config controls the reconciliation sweep.
type Config struct {
	Enabled bool
	// Schedule is a five-field cron expression or a descriptor.
	Schedule string
	// AuditRetentionDays is passed to the cleanup task each sweep. Zero
	// disables cleanup.
	AuditRetentionDays int
}

// ReconcileScheduler periodically reports unresolved payment conflicts and
// enqueues audit log cleanup.
type ReconcileScheduler struct {
	config    Config
	conflicts ConflictLister
	queue     tasks.Enqueuer
	gauge     ConflictGauge

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewReconcileScheduler(cfg Config, conflicts ConflictLister, queue tasks.Enqueuer, gauge ConflictGauge) *ReconcileScheduler {
	return &ReconcileScheduler{
		config:    cfg,
		conflicts: conflicts,
		queue:     queue,
		gauge:     gauge,
		cron:      cron.New(cron.WithParser(scheduleParser)),
	}
}

// ValidateSchedule reports whether expr is a valid cron expression.
func ValidateSchedule(expr string) error {
	if _, err := scheduleParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return nil
}

// Start schedules the sweep. It stops when ctx is cancelled.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		log.Info("Reconcile scheduler disabled")
		return nil
	}
	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Info("Reconcile scheduler started", "schedule", s.config.Schedule, "next_run", s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running sweep and stops the scheduler.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Info("Reconcile scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunOnce performs a single sweep and returns the number of unresolved
// conflicts found.
func (s *ReconcileScheduler) RunOnce(ctx context.Context) int {
	start := time.Now()

	conflicts, err := s.conflicts.ListConflicts(ctx)
	if err != nil {
		log.Error("Reconcile sweep failed to list conflicts", "err", err)
		return 0
	}
	for _, c := range conflicts {
		log.Warn("Unresolved payment conflict",
			"id", c.ID,
			"charge_id", c.ChargeID,
			"age", time.Since(c.CreatedAt).Round(time.Minute),
		)
	}
	if s.gauge != nil {
		s.gauge.SetUnresolvedConflicts(len(conflicts))
	}

	if s.queue != nil && s.config.AuditRetentionDays > 0 {
		task := tasks.PruneAuditLogTask{RetentionDays: s.config.AuditRetentionDays}
		if _, err := s.queue.Add(task).Ctx(ctx).Save(); err != nil {
			log.Error("Failed to enqueue audit cleanup", "err", err)
		}
	}

	log.Info("Reconcile sweep finished", "unresolved", len(conflicts), "duration", time.Since(start))
	return len(conflicts)
}
