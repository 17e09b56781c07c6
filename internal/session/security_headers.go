package session

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Origins Stripe Checkout loads scripts, frames and XHR from.
var stripeOrigins = []string{
	"https://checkout.stripe.com",
	"https://js.stripe.com",
	"https://api.stripe.com",
}

// SecurityHeadersMiddleware adds security headers to all responses. The
// content security policy admits Stripe Checkout plus any analytics origins
// passed in.
func SecurityHeadersMiddleware(analyticsOrigins ...string) gin.HandlerFunc {
	stripe := strings.Join(stripeOrigins, " ")
	scripts := stripe
	connect := stripe
	for _, origin := range analyticsOrigins {
		if origin != "" {
			scripts += " " + origin
			connect += " " + origin
		}
	}
	csp := "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline' " + scripts + "; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https://*.stripe.com; " +
		"font-src 'self'; " +
		"frame-src " + stripe + "; " +
		"connect-src 'self' " + connect + "; " +
		"frame-ancestors 'none'; " +
		"form-action 'self'"

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", csp)
		c.Header("Permissions-Policy",
			"accelerometer=(), "+
				"camera=(), "+
				"geolocation=(), "+
				"gyroscope=(), "+
				"magnetometer=(), "+
				"microphone=(), "+
				"usb=()")

		c.Next()
	}
}

// StrictTransportSecurityMiddleware adds HSTS header for HTTPS-only access.
// Only enable this when serving over HTTPS, as it will break HTTP access.
func StrictTransportSecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
