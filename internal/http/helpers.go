package http

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Content negotiation ---

// wantsJSON reports whether the client asked for JSON over HTML.
func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// --- Error Response Helpers ---

// respondNotFound sends a 404 as JSON or as the error page.
func respondNotFound(c *gin.Context, resource string) {
	if wantsJSON(c) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
		return
	}
	c.HTML(http.StatusNotFound, "error", gin.H{
		"Title":   "Not found",
		"Heading": "Not found",
		"Message": "There is no such " + resource + ".",
	})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error("Internal error", "context", context, "err", err)
	_ = c.Error(err)
	if wantsJSON(c) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.HTML(http.StatusInternalServerError, "error", gin.H{
		"Title":   "Error",
		"Heading": "Something went wrong",
		"Message": "Please try again in a moment.",
	})
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
