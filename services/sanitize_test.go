package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	t.Run("Keeps basic formatting", func(t *testing.T) {
		input := "<p>Walked through the complaint with <strong>Jane</strong>.</p><ul><li>Two employees affected</li></ul>"
		assert.Equal(t, input, SanitizeHTML(input))
	})

	t.Run("Strips scripts and their content", func(t *testing.T) {
		out := SanitizeHTML("<p>Notes</p><script>alert(1)</script>")
		assert.Contains(t, out, "Notes")
		assert.NotContains(t, out, "script")
		assert.NotContains(t, out, "alert(1)")
	})

	t.Run("Strips event handlers", func(t *testing.T) {
		out := SanitizeHTML(`<p onclick="steal()">hi</p>`)
		assert.Equal(t, "<p>hi</p>", out)
	})

	t.Run("Forces rel attributes on links", func(t *testing.T) {
		out := SanitizeHTML(`<a href="https://example.com">docs</a>`)
		assert.Contains(t, out, "nofollow")
		assert.Contains(t, out, `target="_blank"`)
		assert.Contains(t, out, ">docs</a>")
	})

	t.Run("Removes iframes", func(t *testing.T) {
		out := SanitizeHTML(`<iframe src="https://evil.example"></iframe><p>kept</p>`)
		assert.NotContains(t, out, "iframe")
		assert.Contains(t, out, "kept")
	})
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Bold move", SanitizeText("<strong>Bold</strong> move"))
	assert.Equal(t, "plain", SanitizeText("plain"))
	assert.NotContains(t, SanitizeText(`<img src=x onerror="alert(1)">caption`), "onerror")
}
