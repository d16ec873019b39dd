package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts a matched content block", func(t *testing.T) {
		t.Parallel()

		html := `<div class="fr-view"><h2>Chapter 1</h2><p>Once upon a <strong>time</strong>.</p></div>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "## Chapter 1")
		assert.Contains(t, md, "Once upon a **time**.")
	})

	t.Run("converts lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul class="chapters"><li>One</li><li>Two</li></ul>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "- One")
		assert.Contains(t, md, "- Two")
	})

	t.Run("converts strikethrough", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<p><del>old</del> new</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "~~old~~")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Name</th><th>Value</th></tr></thead>
<tbody><tr><td>a</td><td>1</td></tr></tbody>
</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "| Name | Value |")
		assert.Contains(t, md, "| a")
	})

	t.Run("resolves relative links against the configured domain", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter(htmltomarkdown.WithDomain("https://example.com"))
		md, err := conv.Convert(`<p><a href="/chapter/2">Next</a></p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "[Next](https://example.com/chapter/2)")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("   ")

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
