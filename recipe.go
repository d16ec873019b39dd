package harvest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Recipe extracts a fixed set of fields from documents, accumulates the
// resulting records and flushes them to output formats.
//
// A Recipe is safe for concurrent use: a mutex guards the accumulated
// records, the flush cursor and the flush path, so workers may share one
// Recipe. Records are kept in the order their Extract calls completed.
type Recipe struct {
	name      string
	fields    *FieldMap
	writers   map[Format]RecordWriter
	converter Converter
	retain    bool

	mu      sync.Mutex
	records []*Record
	cursor  int // index of the first record not yet flushed
}

// RecipeOption configures a Recipe.
type RecipeOption func(*Recipe)

// WithWriter registers the writer used when flushing to format.
func WithWriter(format Format, w RecordWriter) RecipeOption {
	return func(r *Recipe) {
		r.writers[format] = w
	}
}

// WithConverter sets the HTML to Markdown converter used by fields in
// ModeMarkdown.
func WithConverter(c Converter) RecipeOption {
	return func(r *Recipe) {
		r.converter = c
	}
}

// WithRetainFlushed controls whether records stay in memory after they have
// been flushed. Defaults to true.
func WithRetainFlushed(retain bool) RecipeOption {
	return func(r *Recipe) {
		r.retain = retain
	}
}

// NewRecipe creates a Recipe. The name identifies its output: the file base
// name, the table name and the XML root element.
func NewRecipe(name string, fields *FieldMap, opts ...RecipeOption) (*Recipe, error) {
	if name == "" {
		return nil, Errorf(EINVALID, "recipe name required")
	}
	if !identifier.MatchString(name) {
		return nil, Errorf(EINVALID, "recipe name %q must be a letter or underscore followed by letters, digits or underscores", name)
	}
	if fields == nil || fields.Len() == 0 {
		return nil, Errorf(EINVALID, "recipe %q: fields required", name)
	}

	r := &Recipe{
		name:    name,
		fields:  fields,
		writers: make(map[Format]RecordWriter),
		retain:  true,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, f := range fields.fields {
		if f.Mode == ModeMarkdown && r.converter == nil {
			return nil, Errorf(EINVALID, "recipe %q: field %q uses mode %q but no converter is configured", name, f.Name, ModeMarkdown)
		}
	}

	return r, nil
}

// Name returns the recipe name.
func (r *Recipe) Name() string {
	return r.name
}

// Fields returns the recipe's field map.
func (r *Recipe) Fields() *FieldMap {
	return r.fields
}

// Extract runs every field against doc and appends the resulting record.
// Fields whose selector matches nothing are recorded as absent. A failure to
// read a matched node returns EEXTRACTION; nothing is appended in that case
// and records from earlier calls are unaffected.
func (r *Recipe) Extract(doc Document) (*Record, error) {
	rec, err := r.extract(doc)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()

	return rec, nil
}

// ExtractTo extracts doc and flushes all pending records to format.
// The record is accumulated even if the flush fails, so a later Flush can
// retry the write.
func (r *Recipe) ExtractTo(ctx context.Context, doc Document, format Format) (*Record, error) {
	rec, err := r.Extract(doc)
	if err != nil {
		return nil, err
	}
	if err := r.Flush(ctx, format); err != nil {
		return rec, err
	}
	return rec, nil
}

// ExtractAll extracts each document independently. A failing document
// yields an Outcome carrying its error and does not stop the others.
func (r *Recipe) ExtractAll(docs []Document) []Outcome {
	outcomes := make([]Outcome, len(docs))
	for i, doc := range docs {
		outcomes[i].Source = doc.URL()
		outcomes[i].Record, outcomes[i].Err = r.Extract(doc)
	}
	return outcomes
}

// Flush writes every record accumulated since the last successful flush to
// the writer registered for format. All formats share one cursor, so each
// record is flushed once. On failure the cursor does not move and EWRITE is
// returned.
func (r *Recipe) Flush(ctx context.Context, format Format) error {
	w, ok := r.writers[format]
	if !ok {
		return Errorf(EINVALID, "recipe %q: no writer registered for format %q", r.name, format)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.records[r.cursor:]
	if len(pending) == 0 {
		return nil
	}

	if err := w.WriteRecords(ctx, r.name, r.fields.Names(), pending); err != nil {
		if ErrorCode(err) == EWRITE {
			return err
		}
		return Errorf(EWRITE, "recipe %q: write %s: %v", r.name, format, err)
	}

	if r.retain {
		r.cursor = len(r.records)
	} else {
		r.records = nil
		r.cursor = 0
	}
	return nil
}

// Records returns a copy of the records held in memory.
func (r *Recipe) Records() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Record(nil), r.records...)
}

// Pending returns the number of records not yet flushed.
func (r *Recipe) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records) - r.cursor
}

// Reset drops every record held in memory, flushed or not.
func (r *Recipe) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
	r.cursor = 0
}

// String returns a short description of the recipe.
func (r *Recipe) String() string {
	return fmt.Sprintf("recipe %q (%s)", r.name, strings.Join(r.fields.Names(), ", "))
}

// extract reads no recipe state beyond the immutable field map, so it runs
// without holding the lock.
func (r *Recipe) extract(doc Document) (*Record, error) {
	rec := &Record{
		Source: doc.URL(),
		Values: make([]FieldValue, 0, len(r.fields.fields)),
	}

	for _, f := range r.fields.fields {
		value, err := r.readField(f, f.sel.Resolve(doc))
		if err != nil {
			return nil, Errorf(EEXTRACTION, "field %q of %s: %v", f.Name, describeSource(rec.Source), err)
		}
		rec.Values = append(rec.Values, FieldValue{Name: f.Name, Value: value})
	}

	return rec, nil
}

// readField returns nil when nodes is empty or, in ModeAttr, when no node
// carries the attribute.
func (r *Recipe) readField(f compiledField, nodes []Node) (*string, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	var parts []string
	switch f.Mode {
	case ModeText:
		for _, n := range nodes {
			parts = append(parts, strings.TrimSpace(n.Text()))
		}
		return joined(parts, "\n"), nil

	case ModeAttr:
		for _, n := range nodes {
			if v, ok := n.Attr(f.Attr); ok {
				parts = append(parts, strings.TrimSpace(v))
			}
		}
		if len(parts) == 0 {
			return nil, nil
		}
		return joined(parts, "\n"), nil

	case ModeHTML, ModeMarkdown:
		for _, n := range nodes {
			html, err := n.HTML()
			if err != nil {
				return nil, fmt.Errorf("render html: %w", err)
			}
			parts = append(parts, html)
		}
		html := strings.Join(parts, "\n")
		if f.Mode == ModeHTML {
			return &html, nil
		}
		md, err := r.converter.Convert(html)
		if err != nil {
			return nil, fmt.Errorf("convert markdown: %w", err)
		}
		md = strings.TrimSpace(md)
		return &md, nil
	}

	return nil, fmt.Errorf("unknown mode %q", f.Mode)
}

func joined(parts []string, sep string) *string {
	s := strings.Join(parts, sep)
	return &s
}

func describeSource(url string) string {
	if url == "" {
		return "document"
	}
	return url
}
