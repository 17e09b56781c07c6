package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/quotebuy/internal/payment"
	"github.com/mrlokans/quotebuy/internal/submission"
)

func TestObserveOutcome(t *testing.T) {
	m := New()

	m.ObserveOutcome(submission.StateCommitted)
	m.ObserveOutcome(submission.StateCommitted)
	m.ObserveOutcome(submission.StateConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("conflict")))
}

func TestObserveChargeFailure(t *testing.T) {
	m := New()

	m.ObserveChargeFailure(payment.KindCardDeclined)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.chargeFailures.WithLabelValues("card_declined")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.chargeFailures.WithLabelValues("connection")))
}

func TestSetUnresolvedConflicts(t *testing.T) {
	m := New()

	m.SetUnresolvedConflicts(3)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.conflicts))
}

func TestHandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.ObserveOutcome(submission.StatePreviewReady)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/view/id/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view/id/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `quotebuy_submissions_total{outcome="preview_ready"} 1`)
	assert.Contains(t, body, `route="/view/id/:id"`)
	assert.False(t, strings.Contains(body, `route="/view/id/42"`))
}
