package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quotebuy/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Quotes  *int64            `json:"quotes,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// QuoteCounter reports how many quotes are stored.
type QuoteCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HealthController struct {
	db      *database.Database
	quotes  QuoteCounter
	version string
}

func NewHealthController(db *database.Database, quotes QuoteCounter, version string) *HealthController {
	return &HealthController{
		db:      db,
		quotes:  quotes,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	if h.quotes != nil && status == "healthy" {
		if n, err := h.quotes.Count(c.Request.Context()); err == nil {
			health.Quotes = &n
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
