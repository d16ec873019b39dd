package harvest

import (
	"iter"
	"strings"
)

// Pattern is a reusable CSS matcher. It holds no per-document state, so one
// Pattern can be applied to any number of documents, concurrently or not.
type Pattern struct {
	css   string
	query Query
}

// NewPattern compiles css as a plain CSS selector.
// Positional suffixes such as "[1]" are not CSS and are rejected with
// EINVALIDSELECTOR; they are only meaningful in field selectors.
func NewPattern(engine SelectorEngine, css string) (*Pattern, error) {
	css = whitespace.ReplaceAllString(strings.TrimSpace(css), " ")
	if css == "" {
		return nil, Errorf(EEMPTYSELECTOR, "selector is empty")
	}

	query, err := engine.Compile(css)
	if err != nil {
		return nil, err
	}

	return &Pattern{css: css, query: query}, nil
}

// String returns the pattern's selector.
func (p *Pattern) String() string {
	return p.css
}

// Update returns the nodes of doc matching the pattern in document order.
// The sequence is lazy: the document is traversed when ranging starts, and
// ranging again traverses it again.
func (p *Pattern) Update(doc Document) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range p.query.Match(doc) {
			if !yield(n) {
				return
			}
		}
	}
}

// All returns every node of doc matching the pattern.
func (p *Pattern) All(doc Document) []Node {
	return p.query.Match(doc)
}
