// Package http provides an HTTP-based implementation of harvest.Fetcher.
// It hands decoded HTML to the parse layer; it does not retry failures.
package http

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgents are picked from at random when no User-Agent header is
// configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// Ensure Fetcher implements harvest.Fetcher at compile time.
var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests and decodes
// it to UTF-8.
type Fetcher struct {
	client     *http.Client
	timeout    time.Duration
	encoding   string
	header     http.Header
	cookies    []*http.Cookie
	userAgents []string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithEncoding forces the character encoding used to decode response
// bodies (e.g. "gbk", "windows-1252"), overriding what the server declares.
func WithEncoding(name string) Option {
	return func(f *Fetcher) {
		f.encoding = name
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(f *Fetcher) {
		f.header.Add(key, value)
	}
}

// WithCookie adds a cookie sent with every request.
func WithCookie(c *http.Cookie) Option {
	return func(f *Fetcher) {
		f.cookies = append(f.cookies, c)
	}
}

// WithUserAgents replaces the pool of user agents picked from when no
// User-Agent header is set.
func WithUserAgents(agents ...string) Option {
	return func(f *Fetcher) {
		f.userAgents = agents
	}
}

// WithClient sets the underlying HTTP client. Its Timeout is overridden by
// WithTimeout.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:    DefaultFetchTimeout,
		header:     make(http.Header),
		userAgents: DefaultUserAgents,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	f.client.Timeout = f.timeout

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	for key, values := range f.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" && len(f.userAgents) > 0 {
		req.Header.Set("User-Agent", f.userAgents[rand.IntN(len(f.userAgents))])
	}
	for _, c := range f.cookies {
		req.AddCookie(c)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := f.decode(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// decode wraps body in a reader producing UTF-8. Without a forced encoding
// the charset is taken from the Content-Type header, a BOM or a <meta> tag.
func (f *Fetcher) decode(body io.Reader, contentType string) (io.Reader, error) {
	if f.encoding == "" {
		return charset.NewReader(body, contentType)
	}

	enc, _ := charset.Lookup(strings.ToLower(f.encoding))
	if enc == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "unknown encoding %q", f.encoding)
	}
	return enc.NewDecoder().Reader(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
