// Package crawl drives a Recipe over a batch of URLs. It fetches and parses
// pages concurrently, then extracts them in input order so that one
// failing page never affects the others.
package crawl

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/bloom"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Harvester.Concurrency is not positive.
const DefaultConcurrency = 4

// Harvester runs a Recipe over many URLs.
type Harvester struct {
	Fetcher     harvest.Fetcher
	Parser      harvest.Parser
	RateLimiter harvest.DomainLimiter
	Concurrency int

	// SkipDuplicateContent skips pages whose body is byte-identical to a
	// page already seen in the same run (e.g. a site serving its index
	// page for every missing chapter).
	SkipDuplicateContent bool
}

// Result holds the outcome of a run.
type Result struct {
	RunID string

	// Outcomes has one entry per unique input URL, in input order.
	Outcomes []harvest.Outcome

	Extracted  int
	Failed     int
	Duplicates int
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressFetched
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting progress.
type ProgressFunc func(event ProgressEvent)

// fetchResult holds the outcome of fetching and parsing a single URL.
type fetchResult struct {
	position int
	url      string
	doc      harvest.Document
	hash     uint64
	err      error
}

// Run fetches every URL, extracts it with recipe and returns one Outcome
// per URL. Duplicate URLs are dropped before fetching. Fetch, parse and
// extraction failures are recorded on the URL's Outcome; Run itself fails
// only when ctx is canceled. Records are accumulated on recipe in input
// order and are not flushed.
func (h *Harvester) Run(ctx context.Context, recipe *harvest.Recipe, urls []string, progress ProgressFunc) (*Result, error) {
	urls = dedupe(urls)

	result := &Result{
		RunID:    uuid.New().String(),
		Outcomes: make([]harvest.Outcome, len(urls)),
	}
	if len(urls) == 0 {
		return result, nil
	}

	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(urls)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan fetchResult, len(urls))
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				resultCh <- h.fetch(gctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	fetched := make([]fetchResult, len(urls))
	for r := range resultCh {
		n := int(completed.Add(1))
		fetched[r.position] = r

		if progress == nil {
			continue
		}
		if r.err != nil {
			progress(ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, URL: r.url, Error: r.err})
		} else {
			progress(ProgressEvent{Type: ProgressFetched, Completed: n, Total: total, URL: r.url})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[uint64]string)
	for i, r := range fetched {
		outcome := &result.Outcomes[i]
		outcome.Source = r.url

		if r.err != nil {
			outcome.Err = r.err
			result.Failed++
			continue
		}

		if h.SkipDuplicateContent {
			if first, ok := seen[r.hash]; ok {
				outcome.Err = harvest.Errorf(harvest.EINVALID, "%s: same content as %s", r.url, first)
				result.Duplicates++
				continue
			}
			seen[r.hash] = r.url
		}

		outcome.Record, outcome.Err = recipe.Extract(r.doc)
		if outcome.Err != nil {
			result.Failed++
			continue
		}
		result.Extracted++
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return result, nil
}

// fetch retrieves and parses a single URL.
func (h *Harvester) fetch(ctx context.Context, position int, u string) fetchResult {
	result := fetchResult{position: position, url: u}

	if h.RateLimiter != nil {
		if err := h.RateLimiter.Wait(ctx, domainOf(u)); err != nil {
			result.err = err
			return result
		}
	}

	html, err := h.Fetcher.Fetch(ctx, u)
	if err != nil {
		result.err = err
		return result
	}

	doc, err := h.Parser.Parse(strings.NewReader(html), u)
	if err != nil {
		result.err = err
		return result
	}

	result.doc = doc
	result.hash = xxhash.Sum64String(html)
	return result
}

// urlFilter is a probabilistic set used to skip the exact check for URLs
// that are certainly new.
type urlFilter interface {
	TestAndAdd(key string) bool
}

// dedupe drops repeated URLs, keeping the first occurrence. URL fragments
// are ignored when comparing.
func dedupe(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	return dedupeWith(urls, bloom.NewFilter(uint(len(urls)), 0.0001))
}

// dedupeWith confirms every filter hit against an exact set, so a false
// positive never drops a distinct URL.
func dedupeWith(urls []string, filter urlFilter) []string {
	seen := make(map[string]struct{}, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		key := u
		if idx := strings.Index(key, "#"); idx != -1 {
			key = key[:idx]
		}
		if filter.TestAndAdd(key) {
			if _, ok := seen[key]; ok {
				continue
			}
		}
		seen[key] = struct{}{}
		unique = append(unique, u)
	}
	return unique
}
