package utils

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_Sanitizes(t *testing.T) {
	out := string(RenderMarkdown("**bold** <script>alert(1)</script>"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdown_ExternalLinks(t *testing.T) {
	out := string(RenderMarkdown("see [docs](https://example.com/docs) and [local](/idea/2)"))

	assert.Contains(t, out, `href="https://example.com/docs"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noopener")
	assert.Contains(t, out, `href="/idea/2"`)
}

func TestRenderCache_Memoizes(t *testing.T) {
	calls := 0
	render := func(s string) template.HTML {
		calls++
		return template.HTML("<p>" + s + "</p>")
	}

	c := GetRenderCache()
	first := c.GetOrRender("memo-test-source", render)
	second := c.GetOrRender("memo-test-source", render)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestEnhanceLinks_Empty(t *testing.T) {
	assert.Equal(t, template.HTML(""), EnhanceLinks(""))
}
