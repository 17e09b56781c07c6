// Package web embeds the HTML templates, static assets and page docs.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

//go:embed docs/api.md
var apiDoc []byte

// Templates returns the embedded template files at the root of the FS.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static returns the embedded static assets at the root of the FS.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// APIDoc returns the Markdown source of the API page.
func APIDoc() []byte {
	return apiDoc
}
