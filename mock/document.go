package mock

import "github.com/fwojciec/harvest"

var (
	_ harvest.Document = (*Document)(nil)
	_ harvest.Node     = (*Node)(nil)
)

// Document is a mock implementation of harvest.Document.
type Document struct {
	URLFn func() string
}

func (d *Document) URL() string {
	return d.URLFn()
}

// Node is a mock implementation of harvest.Node.
type Node struct {
	TextFn func() string
	AttrFn func(name string) (string, bool)
	HTMLFn func() (string, error)
}

func (n *Node) Text() string {
	return n.TextFn()
}

func (n *Node) Attr(name string) (string, bool) {
	return n.AttrFn(name)
}

func (n *Node) HTML() (string, error) {
	return n.HTMLFn()
}

var _ harvest.SelectorEngine = (*SelectorEngine)(nil)

// SelectorEngine is a mock implementation of harvest.SelectorEngine.
type SelectorEngine struct {
	CompileFn func(css string) (harvest.Query, error)
}

func (e *SelectorEngine) Compile(css string) (harvest.Query, error) {
	return e.CompileFn(css)
}

var _ harvest.Query = (*Query)(nil)

// Query is a mock implementation of harvest.Query.
type Query struct {
	MatchFn func(doc harvest.Document) []harvest.Node
}

func (q *Query) Match(doc harvest.Document) []harvest.Node {
	return q.MatchFn(doc)
}
