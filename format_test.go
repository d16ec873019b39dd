package harvest_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want harvest.Format
	}{
		{in: "txt", want: harvest.FormatText},
		{in: "text", want: harvest.FormatText},
		{in: "JSON", want: harvest.FormatJSON},
		{in: " xml ", want: harvest.FormatXML},
		{in: "db", want: harvest.FormatSQLite},
		{in: "sql", want: harvest.FormatSQLite},
		{in: "sqlite", want: harvest.FormatSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := harvest.ParseFormat(tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, err := harvest.ParseFormat("csv")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
