// Package goquery implements harvest's parse and selector interfaces with
// goquery and cascadia.
package goquery

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/harvest"
)

// Compile-time interface verification.
var (
	_ harvest.Parser         = (*Parser)(nil)
	_ harvest.SelectorEngine = (*Engine)(nil)
	_ harvest.Document       = (*Document)(nil)
	_ harvest.Node           = (*Node)(nil)
)

// Document wraps a parsed goquery document.
type Document struct {
	doc *goquery.Document
	url string
}

// URL returns the address the document was fetched from.
func (d *Document) URL() string {
	return d.url
}

// Parser parses HTML into Documents.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads UTF-8 HTML from r.
func (p *Parser) Parse(r io.Reader, url string) (harvest.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{doc: doc, url: url}, nil
}

// ParseString parses an HTML string.
func (p *Parser) ParseString(s string, url string) (*Document, error) {
	doc, err := p.Parse(strings.NewReader(s), url)
	if err != nil {
		return nil, err
	}
	return doc.(*Document), nil
}

// Engine compiles CSS selectors with cascadia.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compile parses css as a selector group (e.g. "h1, h2 > a").
func (e *Engine) Compile(css string) (harvest.Query, error) {
	sel, err := cascadia.Compile(css)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALIDSELECTOR, "invalid CSS selector %q: %v", css, err)
	}
	return &query{css: css, matcher: sel}, nil
}

type query struct {
	css     string
	matcher cascadia.Selector
}

// Match runs the selector below the document root. goquery returns the
// matches of a single root in pre-order, which is document order.
func (q *query) Match(doc harvest.Document) []harvest.Node {
	d, ok := doc.(*Document)
	if !ok || d == nil || d.doc == nil {
		return nil
	}

	found := d.doc.FindMatcher(q.matcher)
	nodes := make([]harvest.Node, 0, found.Length())
	found.Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, &Node{sel: sel})
	})
	return nodes
}

// Node is a single matched element.
type Node struct {
	sel *goquery.Selection
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	return n.sel.Text()
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// HTML renders the node including its own tag.
func (n *Node) HTML() (string, error) {
	return goquery.OuterHtml(n.sel)
}
