package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/fwojciec/harvest"
)

// Ensure JSONWriter implements harvest.RecordWriter at compile time.
var _ harvest.RecordWriter = (*JSONWriter)(nil)

// JSONWriter keeps records in dir/name.json as {"items": [...]}. Each item is
// an object with every field key in declaration order; absent fields are
// null. New items are appended to those already in the file and the file is
// replaced atomically.
type JSONWriter struct {
	dir    string
	indent string
}

// JSONOption configures a JSONWriter.
type JSONOption func(*JSONWriter)

// WithIndent sets the indentation of the written file. An empty string
// writes compact JSON.
func WithIndent(indent string) JSONOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// NewJSONWriter creates a JSONWriter writing into dir.
func NewJSONWriter(dir string, opts ...JSONOption) *JSONWriter {
	w := &JSONWriter{dir: dir, indent: "    "}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRecords appends records to the recipe's JSON file.
// A file that is not valid JSON, or whose "items" is not an array, is left
// untouched and EWRITE is returned.
func (w *JSONWriter) WriteRecords(ctx context.Context, name string, fields []string, records []*harvest.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := Path(w.dir, name, harvest.FormatJSON)

	doc, err := readItems(path)
	if err != nil {
		return harvest.Errorf(harvest.EWRITE, "read %s: %v", path, err)
	}

	var items []json.RawMessage
	if raw, ok := doc["items"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return harvest.Errorf(harvest.EWRITE, "read %s: \"items\" is not an array", path)
		}
	}

	for _, rec := range records {
		item, err := marshalItem(fields, rec)
		if err != nil {
			return harvest.Errorf(harvest.EWRITE, "encode record from %s: %v", rec.Source, err)
		}
		items = append(items, item)
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	var raw bytes.Buffer
	if err := encodeCompact(&raw, items); err != nil {
		return harvest.Errorf(harvest.EWRITE, "encode items: %v", err)
	}
	doc["items"] = raw.Bytes()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.indent)
	if err := enc.Encode(doc); err != nil {
		return harvest.Errorf(harvest.EWRITE, "encode %s: %v", path, err)
	}

	if err := WriteFileAtomic(path, buf.Bytes()); err != nil {
		return harvest.Errorf(harvest.EWRITE, "write %s: %v", path, err)
	}
	return nil
}

// ReadItems returns the items stored in a JSON file written by JSONWriter.
// Each item maps field name to value, nil for absent.
func ReadItems(path string) ([]map[string]*string, error) {
	doc, err := readItems(path)
	if err != nil {
		return nil, err
	}
	var items []map[string]*string
	if raw, ok := doc["items"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// readItems loads the top-level object of path. A missing or empty file
// yields an empty object.
func readItems(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]json.RawMessage)
	}
	return doc, nil
}

// marshalItem encodes rec as an object whose keys follow fields.
func marshalItem(fields []string, rec *harvest.Record) (json.RawMessage, error) {
	values := rec.Map()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeCompact(&buf, field); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeCompact(&buf, values[field]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeCompact(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
