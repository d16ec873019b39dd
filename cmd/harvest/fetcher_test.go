package main_test

import (
	"context"
	"testing"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFetcher_Fetch(t *testing.T) {
	t.Parallel()

	remote := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			return "<p>remote " + url + "</p>", nil
		},
	}
	f := main.NewSourceFetcher(remote)

	t.Run("delegates http URLs", func(t *testing.T) {
		t.Parallel()

		html, err := f.Fetch(context.Background(), "HTTPS://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "<p>remote HTTPS://example.com/a</p>", html)
	})

	t.Run("reads local files", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "page.html", "<h1>local</h1>")

		html, err := f.Fetch(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "<h1>local</h1>", html)

		html, err = f.Fetch(context.Background(), "file://"+path)
		require.NoError(t, err)
		assert.Equal(t, "<h1>local</h1>", html)
	})

	t.Run("decodes files by their meta charset", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "latin1.html",
			"<html><head><meta charset=\"iso-8859-1\"></head><body>caf\xe9</body></html>")

		html, err := f.Fetch(context.Background(), path)

		require.NoError(t, err)
		assert.Contains(t, html, "café")
	})

	t.Run("returns ENOTFOUND for missing files", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(context.Background(), "/nonexistent/page.html")

		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}
