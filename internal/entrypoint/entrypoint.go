package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/quotebuy/internal/analytics"
	"github.com/mrlokans/quotebuy/internal/audit"
	"github.com/mrlokans/quotebuy/internal/config"
	"github.com/mrlokans/quotebuy/internal/database"
	auditrepo "github.com/mrlokans/quotebuy/internal/database/audit"
	"github.com/mrlokans/quotebuy/internal/database/quotes"
	http_controllers "github.com/mrlokans/quotebuy/internal/http"
	"github.com/mrlokans/quotebuy/internal/logging"
	"github.com/mrlokans/quotebuy/internal/markup"
	"github.com/mrlokans/quotebuy/internal/metrics"
	"github.com/mrlokans/quotebuy/internal/payment"
	"github.com/mrlokans/quotebuy/internal/scheduler"
	"github.com/mrlokans/quotebuy/internal/session"
	"github.com/mrlokans/quotebuy/internal/submission"
	"github.com/mrlokans/quotebuy/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Stores bundles the repositories shared by the server and the CLI.
type Stores struct {
	DB     *database.Database
	Quotes *quotes.Repository
	Audit  *audit.Service
}

// OpenStores opens the database at path and builds the repositories on it.
func OpenStores(path string) (*Stores, error) {
	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return &Stores{
		DB:     db,
		Quotes: quotes.NewRepository(db.DB),
		Audit:  audit.NewService(auditrepo.NewRepository(db.DB)),
	}, nil
}

// Close waits for pending audit writes and closes the database.
func (s *Stores) Close() error {
	s.Audit.Flush()
	return s.DB.Close()
}

// LoggingConfig maps the log settings onto the logging package.
func LoggingConfig(cfg config.Log) logging.Config {
	return logging.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File: logging.FileConfig{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
			Compress:   true,
		},
	}
}

// NewGateway returns the Stripe gateway when a secret key is configured and
// a gateway that declines every charge otherwise. Either way each charge is
// bounded by the payment timeout.
func NewGateway(cfg config.Payment) payment.Gateway {
	var gateway payment.Gateway = payment.Unconfigured{}
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY is not set. Purchases will fail until it is configured.")
	}
	if cfg.Timeout > 0 {
		gateway = payment.WithTimeout(gateway, cfg.Timeout)
	}
	return gateway
}

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// In-flight purchases finish before the queue they report conflicts to
	// is stopped.
	err := srv.Shutdown(ctx)
	if onShutdown != nil {
		onShutdown(ctx)
	}
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

func Run(cfg *config.Config, version string) error {
	logger, logCloser := logging.Setup(LoggingConfig(cfg.Log))
	defer logCloser.Close()

	log.Info("Starting quotebuy", "version", version)

	stores, err := OpenStores(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing database", "err", err)
		}
	}()

	m := metrics.New()

	// Conflicts go through the task queue when it runs, so a transient
	// database error does not lose the record of a charge.
	var (
		reporter   submission.ConflictReporter = stores.Audit
		queue      tasks.Enqueuer
		taskClient *tasks.Client
	)
	taskCtx, taskCancel := context.WithCancel(context.Background())
	defer taskCancel()

	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			return fmt.Errorf("initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("Error closing task client", "err", err)
			}
		}()

		taskClient.Register(
			tasks.NewRecordConflictQueue(stores.Audit),
			tasks.NewPruneAuditLogQueue(stores.Audit),
		)
		go taskClient.Start(taskCtx)

		queue = taskClient
		reporter = tasks.NewConflictQueue(taskClient, stores.Audit)
	} else {
		log.Warn("Task queue disabled. Payment conflicts are recorded synchronously.")
	}

	var reconciler *scheduler.ReconcileScheduler
	if cfg.Reconcile.Enabled {
		reconciler = scheduler.NewReconcileScheduler(scheduler.Config{
			Enabled:            true,
			Schedule:           cfg.Reconcile.Schedule,
			AuditRetentionDays: cfg.Audit.RetentionDays,
		}, stores.Audit, queue, m)
		if err := reconciler.Start(taskCtx); err != nil {
			return fmt.Errorf("start reconcile scheduler: %w", err)
		}
	}

	pipeline := submission.NewPipeline(
		markup.NewProcessor(),
		stores.Quotes,
		NewGateway(cfg.Payment),
		submission.PaymentConfig{
			AmountCents: cfg.Payment.AmountCents,
			Currency:    cfg.Payment.Currency,
			Description: cfg.Payment.Description,
		},
		submission.WithConflictReporter(reporter),
		submission.WithAuditLogger(stores.Audit),
		submission.WithObserver(m),
		submission.WithLogger(logger.WithPrefix("submission")),
	)

	sqlDB, err := stores.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB for sessions: %w", err)
	}
	sessions, err := session.NewManager(sqlDB, cfg.Session)
	if err != nil {
		return fmt.Errorf("initialize session manager: %w", err)
	}

	csrfSecret, generated, err := session.SecretBytes(cfg.Session.Secret)
	if err != nil {
		return err
	}
	if generated {
		log.Info("Generated session secret (set SESSION_SECRET to persist)")
	}
	if !cfg.Session.SecureCookies {
		log.Warn("Secure cookies disabled. Only do this for local development without HTTPS.")
	}

	routerCfg := http_controllers.RouterConfig{
		Submissions:   pipeline,
		Quotes:        stores.Quotes,
		Database:      stores.DB,
		Sessions:      sessions,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Session.SecureCookies,
		Metrics:       m,
		Logger:        logger,
		Templates:     dirFS(cfg.UI.TemplatesPath),
		Static:        dirFS(cfg.UI.StaticPath),
		Checkout: http_controllers.Checkout{
			StripePublishableKey: cfg.Payment.StripePublishableKey,
			AmountCents:          cfg.Payment.AmountCents,
			Currency:             cfg.Payment.Currency,
			Description:          cfg.Payment.Description,
		},
		Analytics: analytics.NewPlausible(cfg.Analytics),
		Version:   version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconciler != nil {
			reconciler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCancel()
		}
		stores.Audit.Flush()
	}

	return Serve(router, cfg, onShutdown)
}

// dirFS returns nil for an empty path so the router falls back to the
// embedded assets.
func dirFS(path string) fs.FS {
	if path == "" {
		return nil
	}
	return os.DirFS(path)
}
