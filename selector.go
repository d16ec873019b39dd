package harvest

import (
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Node is a single element matched inside a Document.
type Node interface {
	// Text returns the combined text content of the node and its descendants.
	Text() string

	// Attr returns the value of the named attribute.
	// The bool result is false if the attribute is not present.
	Attr(name string) (string, bool)

	// HTML renders the node, including its own tag, as HTML.
	HTML() (string, error)
}

// Document is an already-parsed HTML tree. The core only reads it.
type Document interface {
	// URL returns the address the document was fetched from, if known.
	URL() string
}

// Parser builds Documents from raw HTML.
type Parser interface {
	// Parse reads UTF-8 HTML from r. The url is recorded on the
	// returned Document and may be empty.
	Parse(r io.Reader, url string) (Document, error)
}

// Query is a compiled CSS selector.
type Query interface {
	// Match returns every element of doc matching the selector in document
	// (depth-first, pre-order) order.
	Match(doc Document) []Node
}

// SelectorEngine compiles CSS selectors into queries.
type SelectorEngine interface {
	// Compile parses a plain CSS selector.
	// Returns EINVALIDSELECTOR if css cannot be parsed.
	Compile(css string) (Query, error)
}

// Selector is a CSS selector with an optional 1-based positional index.
// "h4[1]" has CSS "h4" and Index 1; "div.fr-view" has Index 0 (no index).
type Selector struct {
	Raw   string
	CSS   string
	Index int
}

// HasIndex reports whether the selector picks a single occurrence.
func (s Selector) HasIndex() bool {
	return s.Index > 0
}

// String returns the selector as it was written, whitespace normalized.
func (s Selector) String() string {
	return s.Raw
}

// indexSuffix matches a trailing "[<integer>]". Attribute selectors cannot
// start with a digit or sign, so the form is unambiguous.
var indexSuffix = regexp.MustCompile(`\[\s*([+-]?\d+)\s*\]$`)

var whitespace = regexp.MustCompile(`\s+`)

// ParseSelector splits raw into its CSS part and positional index.
// It checks only the index grammar; CSS syntax is checked by a SelectorEngine.
// Returns EEMPTYSELECTOR for blank input and EINVALIDSELECTOR for a
// malformed or non-positive index.
func ParseSelector(raw string) (Selector, error) {
	normalized := whitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
	if normalized == "" {
		return Selector{}, Errorf(EEMPTYSELECTOR, "selector is empty")
	}

	sel := Selector{Raw: normalized, CSS: normalized}

	m := indexSuffix.FindStringSubmatchIndex(normalized)
	if m == nil {
		return sel, nil
	}

	index, err := strconv.Atoi(normalized[m[2]:m[3]])
	if err != nil {
		return Selector{}, Errorf(EINVALIDSELECTOR, "selector %q: malformed index: %v", raw, err)
	}
	if index <= 0 {
		return Selector{}, Errorf(EINVALIDSELECTOR, "selector %q: index must be a positive integer, got %d", raw, index)
	}

	sel.CSS = strings.TrimSpace(normalized[:m[0]])
	if sel.CSS == "" {
		return Selector{}, Errorf(EINVALIDSELECTOR, "selector %q: index without a CSS selector", raw)
	}
	sel.Index = index
	return sel, nil
}

// CompiledSelector is a Selector bound to a compiled Query.
type CompiledSelector struct {
	Selector
	query Query
}

// CompileSelector parses raw and compiles its CSS part with engine.
// Both the index grammar and the CSS syntax are checked here so that
// malformed selectors fail at construction time.
func CompileSelector(engine SelectorEngine, raw string) (*CompiledSelector, error) {
	sel, err := ParseSelector(raw)
	if err != nil {
		return nil, err
	}

	query, err := engine.Compile(sel.CSS)
	if err != nil {
		return nil, err
	}

	return &CompiledSelector{Selector: sel, query: query}, nil
}

// Resolve returns the nodes of doc matched by the selector.
// With an index k it returns the single node at position k-1, or nil when
// the document holds fewer than k matches. Absence is not an error.
func (s *CompiledSelector) Resolve(doc Document) []Node {
	nodes := s.query.Match(doc)
	if !s.HasIndex() {
		return nodes
	}
	if s.Index > len(nodes) {
		return nil
	}
	return nodes[s.Index-1 : s.Index]
}

// Resolve compiles raw with engine and resolves it against doc.
// Callers applying one selector to many documents should compile it once
// with CompileSelector.
func Resolve(engine SelectorEngine, doc Document, raw string) ([]Node, error) {
	sel, err := CompileSelector(engine, raw)
	if err != nil {
		return nil, err
	}
	return sel.Resolve(doc), nil
}
