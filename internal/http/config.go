package http

import (
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/quotebuy/internal/analytics"
	"github.com/mrlokans/quotebuy/internal/database"
	"github.com/mrlokans/quotebuy/internal/metrics"
	"github.com/mrlokans/quotebuy/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Submissions SubmissionService
	Quotes      QuoteReader
	Database    *database.Database

	// Sessions carry flash notices across the post/redirect/get cycle.
	// Optional: without it notices are dropped.
	Sessions *session.Manager

	// CSRF protection is enabled when CSRFSecret is set.
	CSRFSecret    []byte
	SecureCookies bool

	// Optional
	Metrics *metrics.Metrics
	Logger  *log.Logger

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS

	// Checkout settings shown on the buy page
	Checkout Checkout

	// Analytics adds the Plausible script to every page when enabled.
	Analytics analytics.Plausible

	// Application info
	Version string
}

// Checkout is what the buy page needs to render the card form.
type Checkout struct {
	StripePublishableKey string
	AmountCents          int64
	Currency             string
	Description          string
}
