package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/harvest"
	"golang.org/x/net/html/charset"
)

// Ensure SourceFetcher implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*SourceFetcher)(nil)

// SourceFetcher reads http(s) sources through a remote fetcher and
// everything else from the local filesystem. A "file://" prefix is
// accepted for local files.
type SourceFetcher struct {
	remote harvest.Fetcher
}

// NewSourceFetcher creates a SourceFetcher delegating remote URLs to remote.
func NewSourceFetcher(remote harvest.Fetcher) *SourceFetcher {
	return &SourceFetcher{remote: remote}
}

// Fetch returns the UTF-8 HTML of source.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) (string, error) {
	if isRemote(source) {
		return f.remote.Fetch(ctx, source)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", harvest.Errorf(harvest.ENOTFOUND, "%s: no such file", path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	// Local files carry no Content-Type, so the encoding is sniffed from
	// the BOM or <meta charset>.
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return string(body), nil
}

// Close closes the remote fetcher.
func (f *SourceFetcher) Close() error {
	return f.remote.Close()
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
