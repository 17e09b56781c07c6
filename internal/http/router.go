package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quotebuy/internal/logging"
	"github.com/mrlokans/quotebuy/internal/session"
	"github.com/mrlokans/quotebuy/web"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	router := gin.New()
	router.Use(logging.GinMiddleware(logger))
	router.Use(gin.Recovery())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	router.Use(session.SecurityHeadersMiddleware(cfg.Analytics.Origin()))
	if cfg.SecureCookies {
		router.Use(session.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(session.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave("/static/", "/metrics", "/health", "/ping", "/quote"))
	}

	templates := cfg.Templates
	if templates == nil {
		templates = web.Templates()
	}
	router.SetHTMLTemplate(loadTemplates(templates, cfg.Checkout, cfg.Analytics))

	static := cfg.Static
	if static == nil {
		static = web.Static()
	}
	router.StaticFS("/static", http.FS(static))

	health := NewHealthController(cfg.Database, cfg.Quotes, cfg.Version)
	quotes := NewQuotesController(cfg.Quotes, renderDoc(web.APIDoc()))
	submissions := NewSubmissionController(cfg.Submissions, cfg.Sessions, cfg.Checkout)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Submission
	router.GET("/buy", submissions.BuyPage)
	router.POST("/buy", submissions.Buy)
	router.GET("/preview", submissions.PreviewPage)
	router.POST("/preview", submissions.Preview)

	// Reading
	router.GET("/quote", quotes.Random)
	router.GET("/", quotes.ViewAll)
	router.GET("/view/", quotes.ViewAll)
	router.GET("/view/id/:id", quotes.ViewByID)
	router.GET("/view/user/:username", quotes.ViewByAuthor)
	router.GET("/api", quotes.APIPage)

	return router
}
