package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(5000), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, int64(100), cfg.Payment.AmountCents)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.Equal(t, "Quote", cfg.Payment.Description)
	assert.Equal(t, 30*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.Lifetime)
	assert.True(t, cfg.Session.SecureCookies)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, "*/15 * * * *", cfg.Reconcile.Schedule)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.PaymentConfigured())
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("PAYMENT_AMOUNT_CENTS", "250")
	t.Setenv("PAYMENT_CURRENCY", "eur")
	t.Setenv("PAYMENT_TIMEOUT", "5s")
	t.Setenv("SESSION_SECURE_COOKIES", "false")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PLAUSIBLE_DOMAIN", "quotes.example.com")

	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.True(t, cfg.PaymentConfigured())
	assert.Equal(t, int64(250), cfg.Payment.AmountCents)
	assert.Equal(t, "eur", cfg.Payment.Currency)
	assert.Equal(t, 5*time.Second, cfg.Payment.Timeout)
	assert.False(t, cfg.Session.SecureCookies)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "quotes.example.com", cfg.Analytics.PlausibleDomain)
}
