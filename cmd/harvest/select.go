package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
)

// Run executes the select command.
func (c *SelectCmd) Run(deps *Dependencies) error {
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	doc, err := deps.Parser.Parse(strings.NewReader(html), c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	if c.Mode == "links" {
		return c.printLinks(deps, doc)
	}

	// A single-field recipe reads the match exactly as "run" would.
	fields, err := harvest.NewFieldMap(deps.Engine, harvest.Field{
		Name:     "match",
		Selector: c.Selector,
		Mode:     harvest.FieldMode(c.Mode),
		Attr:     c.Attr,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	recipe, err := harvest.NewRecipe("select", fields, harvest.WithConverter(deps.Converter))
	if err != nil {
		return err
	}

	rec, err := recipe.Extract(doc)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	value, ok := rec.Get("match")
	if !ok {
		err := harvest.Errorf(harvest.ENOTFOUND, "selector %q matched nothing in %s", c.Selector, c.Source)
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, value)
	return nil
}

func (c *SelectCmd) printLinks(deps *Dependencies, doc harvest.Document) error {
	pattern, err := harvest.NewPattern(deps.Engine, c.Selector)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	links, err := goquery.ExtractLinks(doc, pattern, goquery.LinkOptions{SameHost: c.SameHost})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	for _, link := range links {
		fmt.Fprintln(deps.Stdout, link.URL)
	}
	return nil
}
