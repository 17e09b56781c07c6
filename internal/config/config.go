package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Payment
		Session
		Tasks
		Reconcile
		Audit
		Log
		Analytics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	UI struct {
		// TemplatesPath overrides the embedded templates when set.
		TemplatesPath string
		StaticPath    string
	}
	Payment struct {
		StripeSecretKey      string
		StripePublishableKey string
		AmountCents          int64
		Currency             string
		Description          string
		Timeout              time.Duration // bound on a single charge call
	}
	Session struct {
		Secret        string // CSRF auth key, auto-generated if empty
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "*/15 * * * *" = every 15 minutes
	}
	Audit struct {
		RetentionDays int // Days to keep audit events, unresolved conflicts excepted
	}
	Log struct {
		Level      string
		Format     string // text, json, logfmt
		File       string // empty disables file output
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
	// Analytics enables the Plausible page script when a domain is set.
	Analytics struct {
		PlausibleDomain     string
		PlausibleScriptURL  string
		PlausibleExtensions string // comma separated
	}
)

// PaymentConfigured reports whether real charges can be made.
func (c *Config) PaymentConfigured() bool {
	return c.Payment.StripeSecretKey != ""
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "")
	v.SetDefault("static_path", "")

	// Payment defaults
	v.SetDefault("stripe_secret_key", "")
	v.SetDefault("stripe_publishable_key", "")
	v.SetDefault("payment_amount_cents", DefaultAmountCents)
	v.SetDefault("payment_currency", DefaultCurrency)
	v.SetDefault("payment_description", DefaultDescription)
	v.SetDefault("payment_timeout", "30s")

	// Session defaults
	v.SetDefault("session_secret", "")
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("session_secure_cookies", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", "*/15 * * * *")
	v.SetDefault("audit_retention_days", 90)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 28)

	v.SetDefault("plausible_domain", "")
	v.SetDefault("plausible_script_url", "")
	v.SetDefault("plausible_extensions", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Payment: Payment{
			StripeSecretKey:      v.GetString("STRIPE_SECRET_KEY"),
			StripePublishableKey: v.GetString("STRIPE_PUBLISHABLE_KEY"),
			AmountCents:          v.GetInt64("PAYMENT_AMOUNT_CENTS"),
			Currency:             v.GetString("PAYMENT_CURRENCY"),
			Description:          v.GetString("PAYMENT_DESCRIPTION"),
			Timeout:              v.GetDuration("PAYMENT_TIMEOUT"),
		},
		Session: Session{
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Analytics: Analytics{
			PlausibleDomain:     v.GetString("PLAUSIBLE_DOMAIN"),
			PlausibleScriptURL:  v.GetString("PLAUSIBLE_SCRIPT_URL"),
			PlausibleExtensions: v.GetString("PLAUSIBLE_EXTENSIONS"),
		},
	}
}
