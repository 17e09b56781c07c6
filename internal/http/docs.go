package http

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var docEngine = goldmark.New(goldmark.WithExtensions(extension.Table))

// renderDoc converts an embedded Markdown page to HTML once at startup.
// The source ships with the binary, so a conversion error is a build defect.
func renderDoc(src []byte) template.HTML {
	var buf bytes.Buffer
	if err := docEngine.Convert(src, &buf); err != nil {
		panic(err)
	}
	return template.HTML(buf.String()) // #nosec G203
}
