// Package analytics renders the optional Plausible page analytics script.
package analytics

import (
	"html/template"
	"net/url"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/quotebuy/internal/config"
)

const defaultScriptURL = "https://plausible.io/js/script.js"

// Plausible is the effective analytics configuration. The zero value is
// disabled.
type Plausible struct {
	Domain     string
	ScriptURL  string
	Extensions []string
}

// ValidExtensions lists the known Plausible script extensions.
var ValidExtensions = []string{
	"outbound-links",
	"file-downloads",
	"tagged-events",
	"hash",
	"compat",
	"local",
	"manual",
	"pageview-props",
	"revenue",
}

// NewPlausible builds the configuration from the environment settings.
// Unknown extensions are dropped with a warning.
func NewPlausible(cfg config.Analytics) Plausible {
	scriptURL := cfg.PlausibleScriptURL
	if scriptURL == "" {
		scriptURL = defaultScriptURL
	}

	var extensions []string
	for _, ext := range parseExtensions(cfg.PlausibleExtensions) {
		if !IsValidExtension(ext) {
			log.Warn("Ignoring unknown Plausible extension", "extension", ext)
			continue
		}
		extensions = append(extensions, ext)
	}

	return Plausible{
		Domain:     cfg.PlausibleDomain,
		ScriptURL:  scriptURL,
		Extensions: extensions,
	}
}

// Enabled reports whether pages should load the script.
func (p Plausible) Enabled() bool {
	return p.Domain != ""
}

// Origin returns the scheme and host the script and its events use, for the
// content security policy. Empty when disabled.
func (p Plausible) Origin() string {
	if !p.Enabled() {
		return ""
	}
	u, err := url.Parse(p.ScriptURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// ScriptTag returns safe HTML for the Plausible script tag.
func (p Plausible) ScriptTag() template.HTML {
	if !p.Enabled() {
		return ""
	}

	scriptURL := BuildScriptURL(p.ScriptURL, p.Extensions)

	return template.HTML(`<script defer data-domain="` + template.HTMLEscapeString(p.Domain) + `" src="` + template.HTMLEscapeString(scriptURL) + `"></script>`) // #nosec G203
}

// BuildScriptURL inserts extensions before the .js suffix:
// script.js becomes script.outbound-links.hash.js.
func BuildScriptURL(baseURL string, extensions []string) string {
	if len(extensions) == 0 {
		return baseURL
	}
	if base, found := strings.CutSuffix(baseURL, ".js"); found {
		return base + "." + strings.Join(extensions, ".") + ".js"
	}
	return baseURL
}

// IsValidExtension checks if an extension is known
func IsValidExtension(ext string) bool {
	return slices.Contains(ValidExtensions, ext)
}

// parseExtensions splits comma-separated extensions and trims whitespace
func parseExtensions(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
