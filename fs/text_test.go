package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextWriter_WriteRecords(t *testing.T) {
	t.Parallel()

	fields := []string{"title", "content"}

	t.Run("appends one block per record", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewTextWriter(dir)
		ctx := context.Background()

		require.NoError(t, w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record("a", fields, str("Ch1"), str("x")),
		}))
		require.NoError(t, w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record("b", fields, nil, str("y")),
		}))

		data, err := os.ReadFile(filepath.Join(dir, "chapters.txt"))
		require.NoError(t, err)
		assert.Equal(t, "Ch1\nx\n---\n<absent>\ny\n---\n", string(data))
	})

	t.Run("never rewrites existing content", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "chapters.txt")
		require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0644))

		w := fs.NewTextWriter(dir)
		require.NoError(t, w.WriteRecords(context.Background(), "chapters", fields, []*harvest.Record{
			record("a", fields, str(""), str("x")),
		}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "earlier run\n\nx\n---\n", string(data))
	})

	t.Run("fails with EWRITE when the directory is a file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(dir, nil, 0644))

		err := fs.NewTextWriter(dir).WriteRecords(context.Background(), "chapters", fields, []*harvest.Record{
			record("a", fields, str("t"), str("c")),
		})

		assert.Equal(t, harvest.EWRITE, harvest.ErrorCode(err))
	})

	t.Run("returns context errors", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fs.NewTextWriter(t.TempDir()).WriteRecords(ctx, "chapters", fields, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTextWriter_Format(t *testing.T) {
	t.Parallel()

	fields := []string{"title", "content"}
	records := []*harvest.Record{record("a", fields, str("Ch 1"), nil)}

	t.Run("writes keys and custom placeholders", func(t *testing.T) {
		t.Parallel()

		w := fs.NewTextWriter("", fs.WithKeys(true), fs.WithAbsent("N/A"), fs.WithSeparator("==="))

		assert.Equal(t, "TITLE:\nCh 1\nCONTENT:\nN/A\n===\n", w.Format(fields, records))
	})

	t.Run("applies replacements in order to present values", func(t *testing.T) {
		t.Parallel()

		w := fs.NewTextWriter("", fs.WithReplacements(
			fs.Replacement{Pattern: regexp.MustCompile(`\s+`), Repl: "_"},
			fs.Replacement{Pattern: regexp.MustCompile(`(\d+)`), Repl: "<$1>"},
		))

		assert.Equal(t, "Ch_<1>\n<absent>\n---\n", w.Format(fields, records))
	})

	t.Run("indents continuation lines of multi-line values", func(t *testing.T) {
		t.Parallel()

		w := fs.NewTextWriter("")
		got := w.Format(fields, []*harvest.Record{
			record("a", fields, str("Ch 1"), str("first\nsecond\n---")),
		})

		assert.Equal(t, "Ch 1\nfirst\n  second\n  ---\n---\n", got)
	})

	t.Run("escapes values that read as markers", func(t *testing.T) {
		t.Parallel()

		w := fs.NewTextWriter("", fs.WithKeys(true))
		got := w.Format(fields, []*harvest.Record{
			record("a", fields, str("---"), str("<absent>")),
			record("b", fields, str("CONTENT:"), str(`\n`)),
			record("c", fields, str(" lead"), str("plain")),
		})

		assert.Equal(t,
			"TITLE:\n\\---\nCONTENT:\n\\<absent>\n---\n"+
				"TITLE:\n\\CONTENT:\nCONTENT:\n\\\\n\n---\n"+
				"TITLE:\n\\ lead\nCONTENT:\nplain\n---\n",
			got)
	})
}
