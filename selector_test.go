package harvest_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewParser().ParseString(html, "https://example.com/page")
	require.NoError(t, err)
	return doc
}

func texts(nodes []harvest.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Text()
	}
	return out
}

func TestParseSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		css   string
		index int
	}{
		{name: "plain", raw: "div.fr-view", css: "div.fr-view", index: 0},
		{name: "indexed", raw: "h4[1]", css: "h4", index: 1},
		{name: "indexed with spaces", raw: "h4 [ 2 ]", css: "h4", index: 2},
		{name: "explicit sign", raw: "p[+3]", css: "p", index: 3},
		{name: "attribute selector is not an index", raw: "a[href]", css: "a[href]", index: 0},
		{name: "attribute then index", raw: "a[href][2]", css: "a[href]", index: 2},
		{name: "whitespace normalized", raw: "  div \n\t p ", css: "div p", index: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sel, err := harvest.ParseSelector(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.css, sel.CSS)
			assert.Equal(t, tt.index, sel.Index)
			assert.Equal(t, tt.index > 0, sel.HasIndex())
		})
	}
}

func TestParseSelector_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		code string
	}{
		{name: "empty", raw: "", code: harvest.EEMPTYSELECTOR},
		{name: "blank", raw: " \t\n", code: harvest.EEMPTYSELECTOR},
		{name: "zero index", raw: "h4[0]", code: harvest.EINVALIDSELECTOR},
		{name: "negative index", raw: "h4[-1]", code: harvest.EINVALIDSELECTOR},
		{name: "index only", raw: "[1]", code: harvest.EINVALIDSELECTOR},
		{name: "index overflows", raw: "h4[99999999999999999999999]", code: harvest.EINVALIDSELECTOR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := harvest.ParseSelector(tt.raw)

			require.Error(t, err)
			assert.Equal(t, tt.code, harvest.ErrorCode(err))
		})
	}
}

func TestCompileSelector(t *testing.T) {
	t.Parallel()

	engine := goquery.NewEngine()

	t.Run("rejects malformed CSS", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"div[", "h4[1.5]", "p:unknown-pseudo"} {
			_, err := harvest.CompileSelector(engine, raw)
			require.Error(t, err, raw)
			assert.Equal(t, harvest.EINVALIDSELECTOR, harvest.ErrorCode(err), raw)
		}
	})

	t.Run("resolves every match in document order", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<div><p>one</p><section><p>two</p></section></div><p>three</p>`)
		sel, err := harvest.CompileSelector(engine, "p")
		require.NoError(t, err)

		assert.Equal(t, []string{"one", "two", "three"}, texts(sel.Resolve(doc)))
	})

	t.Run("resolves the k-th match", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<h4>first</h4><h4>second</h4><h4>third</h4>`)
		sel, err := harvest.CompileSelector(engine, "h4[2]")
		require.NoError(t, err)

		assert.Equal(t, []string{"second"}, texts(sel.Resolve(doc)))
	})

	t.Run("index past the last match resolves to nothing", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<h4>only</h4>`)
		sel, err := harvest.CompileSelector(engine, "h4[2]")
		require.NoError(t, err)

		assert.Empty(t, sel.Resolve(doc))
	})

	t.Run("index k equals the k-th element of the full match list", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<ul><li>a</li><li>b<ul><li>c</li></ul></li><li>d</li></ul>`)
		all, err := harvest.CompileSelector(engine, "li")
		require.NoError(t, err)
		matches := all.Resolve(doc)
		require.Len(t, matches, 4)

		for k := 1; k <= len(matches); k++ {
			indexed, err := harvest.CompileSelector(engine, fmt.Sprintf("li[%d]", k))
			require.NoError(t, err)
			got := indexed.Resolve(doc)
			require.Len(t, got, 1)
			assert.Equal(t, matches[k-1].Text(), got[0].Text())
		}
	})

	t.Run("selector group keeps document order", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, `<h2>b</h2><h1>a</h1><h2>c</h2>`)
		sel, err := harvest.CompileSelector(engine, "h1, h2")
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "a", "c"}, texts(sel.Resolve(doc)))
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<h4>a</h4><h4>b</h4>`)

	nodes, err := harvest.Resolve(goquery.NewEngine(), doc, "h4[2]")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, texts(nodes))

	_, err = harvest.Resolve(goquery.NewEngine(), doc, "h4[0]")
	assert.Equal(t, harvest.EINVALIDSELECTOR, harvest.ErrorCode(err))
}
