package goquery

import (
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
)

// Link is an anchor found in a document.
type Link struct {
	URL  string
	Text string
}

// LinkOptions configures ExtractLinks.
type LinkOptions struct {
	// SameHost drops links whose host differs from the document's.
	// Subdomains count as different hosts.
	SameHost bool
}

// ExtractLinks returns the href of every node matched by pattern, resolved
// against the document URL. Links are deduplicated by URL and keep document
// order of first occurrence. Non-HTTP links (javascript:, mailto:, ...) and
// links back to the document itself are skipped.
func ExtractLinks(doc harvest.Document, pattern *harvest.Pattern, opts LinkOptions) ([]Link, error) {
	base, err := url.Parse(doc.URL())
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid document URL: %v", err)
	}

	seen := make(map[string]bool)
	var links []Link

	for n := range pattern.Update(doc) {
		href, ok := n.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			continue
		}
		if isNonHTTPLink(href) {
			continue
		}

		resolved := resolveURL(base, strings.TrimSpace(href))
		if resolved == "" || seen[resolved] {
			continue
		}
		if opts.SameHost && !isSameHost(base, resolved) {
			continue
		}

		seen[resolved] = true
		links = append(links, Link{
			URL:  resolved,
			Text: strings.TrimSpace(n.Text()),
		})
	}

	return links, nil
}

// resolveURL resolves href against base with the fragment stripped.
// Returns "" if href cannot be parsed or points back at base.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	self := *base
	self.Fragment = ""
	if resolved.String() == self.String() {
		return ""
	}
	return resolved.String()
}

func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
