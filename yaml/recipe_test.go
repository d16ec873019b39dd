package yaml_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecipe(t *testing.T) {
	t.Parallel()

	t.Run("keeps field order from the file", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.DecodeRecipe(strings.NewReader(`
name: chapters
fields:
  title: "h4[1]"
  content: div.fr-view
  next:
    selector: "a.next[1]"
    attr: href
  body:
    selector: article
    mode: markdown
`))

		require.NoError(t, err)
		assert.Equal(t, "chapters", cfg.Name)
		assert.Equal(t, []harvest.Field{
			{Name: "title", Selector: "h4[1]"},
			{Name: "content", Selector: "div.fr-view"},
			{Name: "next", Selector: "a.next[1]", Mode: harvest.ModeAttr, Attr: "href"},
			{Name: "body", Selector: "article", Mode: harvest.ModeMarkdown},
		}, cfg.Fields)
	})

	t.Run("takes the field name from the key", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.DecodeRecipe(strings.NewReader(`
name: chapters
fields:
  title:
    name: other
    selector: h4
`))

		require.NoError(t, err)
		assert.Equal(t, []harvest.Field{{Name: "title", Selector: "h4"}}, cfg.Fields)
	})

	tests := []struct {
		name  string
		input string
		code  string
	}{
		{name: "empty file", input: "", code: harvest.EINVALID},
		{name: "not a mapping", input: "- a\n- b\n", code: harvest.EINVALID},
		{name: "unknown key", input: "name: x\nfield:\n  a: b\n", code: harvest.EINVALID},
		{name: "missing name", input: "fields:\n  a: b\n", code: harvest.EINVALID},
		{name: "missing fields", input: "name: x\n", code: harvest.EINVALID},
		{name: "fields not a mapping", input: "name: x\nfields: [a, b]\n", code: harvest.EINVALID},
		{name: "field is a list", input: "name: x\nfields:\n  a: [b]\n", code: harvest.EINVALID},
		{name: "duplicate field", input: "name: x\nfields:\n  a: h1\n  a: h2\n", code: harvest.EDUPLICATEFIELD},
		{name: "malformed yaml", input: "name: [x\n", code: harvest.EINVALID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := yaml.DecodeRecipe(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, tt.code, harvest.ErrorCode(err))
		})
	}
}

func TestLoadRecipeFile(t *testing.T) {
	t.Parallel()

	t.Run("reads a recipe file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "novel.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: novel\nfields:\n  title: h1\n"), 0644))

		cfg, err := yaml.LoadRecipeFile(path)

		require.NoError(t, err)
		assert.Equal(t, "novel", cfg.Name)
		assert.Len(t, cfg.Fields, 1)
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadRecipeFile(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
