package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/quotebuy/web"
)

func TestRenderDoc(t *testing.T) {
	out := string(renderDoc([]byte("## Title\n\n| a | b |\n|---|---|\n| `x` | y |\n")))

	assert.Contains(t, out, "<h2>Title</h2>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<code>x</code>")
}

func TestRenderDoc_APIPage(t *testing.T) {
	out := string(renderDoc(web.APIDoc()))

	assert.Contains(t, out, "<h2>GET /quote</h2>")
	assert.Contains(t, out, "&lt;b&gt;Stay&lt;/b&gt; hungry")
	assert.Contains(t, out, "<code>GET /view/user/{name}</code>")
}
