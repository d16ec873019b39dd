package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string {
	return &s
}

func record(fields []string, values ...*string) *harvest.Record {
	rec := &harvest.Record{}
	for i, f := range fields {
		rec.Values = append(rec.Values, harvest.FieldValue{Name: f, Value: values[i]})
	}
	return rec
}

func TestTableWriter_WriteRecords(t *testing.T) {
	t.Parallel()

	fields := []string{"title", "content"}

	t.Run("appends one row per record across flushes", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		w := sqlite.NewTableWriter(db)
		ctx := context.Background()

		require.NoError(t, w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record(fields, str("Ch1"), str("x")),
		}))
		require.NoError(t, w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record(fields, nil, str("y")),
		}))

		rows, err := w.ReadRows(ctx, "chapters")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Ch1", *rows[0]["title"])
		assert.Equal(t, "x", *rows[0]["content"])
		assert.Nil(t, rows[1]["title"])
		assert.Equal(t, "y", *rows[1]["content"])
	})

	t.Run("stores empty matches as empty strings", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		w := sqlite.NewTableWriter(db)
		ctx := context.Background()

		require.NoError(t, w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record(fields, str(""), nil),
		}))

		rows, err := w.ReadRows(ctx, "chapters")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0]["title"])
		assert.Empty(t, *rows[0]["title"])
		assert.Nil(t, rows[0]["content"])
	})

	t.Run("adds columns for new fields", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		w := sqlite.NewTableWriter(db)
		ctx := context.Background()

		require.NoError(t, w.WriteRecords(ctx, "chapters", []string{"title"}, []*harvest.Record{
			record([]string{"title"}, str("1")),
		}))
		wider := []string{"title", "author"}
		require.NoError(t, w.WriteRecords(ctx, "chapters", wider, []*harvest.Record{
			record(wider, str("2"), str("anon")),
		}))

		rows, err := w.ReadRows(ctx, "chapters")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Nil(t, rows[0]["author"])
		assert.Equal(t, "anon", *rows[1]["author"])
	})

	t.Run("quotes identifiers", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		w := sqlite.NewTableWriter(db)
		ctx := context.Background()
		keywords := []string{"select", "order"}

		require.NoError(t, w.WriteRecords(ctx, "group", keywords, []*harvest.Record{
			record(keywords, str("a"), str("b")),
		}))

		rows, err := w.ReadRows(ctx, "group")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "a", *rows[0]["select"])
	})

	t.Run("writes nothing when the batch fails", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		w := sqlite.NewTableWriter(db)
		ctx := context.Background()

		require.NoError(t, w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record(fields, str("1"), str("x")),
		}))
		_, err := db.ExecContext(ctx, `CREATE TRIGGER reject BEFORE INSERT ON chapters
WHEN NEW.title = 'bad' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
		require.NoError(t, err)

		err = w.WriteRecords(ctx, "chapters", fields, []*harvest.Record{
			record(fields, str("2"), str("y")),
			record(fields, str("bad"), str("z")),
		})

		assert.Equal(t, harvest.EWRITE, harvest.ErrorCode(err))
		rows, err := w.ReadRows(ctx, "chapters")
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}
