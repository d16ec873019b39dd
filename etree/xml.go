// Package etree provides an XML record writer built on beevik/etree.
package etree

import (
	"context"
	"errors"
	"os"

	"github.com/beevik/etree"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/fs"
)

// ItemTag is the element wrapping each record.
const ItemTag = "item"

// Ensure XMLWriter implements harvest.RecordWriter at compile time.
var _ harvest.RecordWriter = (*XMLWriter)(nil)

// XMLWriter keeps records in dir/name.xml. The root element is named after
// the recipe and holds one <item> per record with one child element per
// present field, in declaration order. Absent fields have no element; a
// field that matched an empty node has an empty element.
type XMLWriter struct {
	dir    string
	indent int
}

// NewXMLWriter creates an XMLWriter writing into dir.
func NewXMLWriter(dir string) *XMLWriter {
	return &XMLWriter{dir: dir, indent: 4}
}

// WriteRecords appends records to the recipe's XML file, creating it when
// needed. An existing file that cannot be parsed or whose root element is
// not named after the recipe is left untouched and EWRITE is returned.
func (w *XMLWriter) WriteRecords(ctx context.Context, name string, fields []string, records []*harvest.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := fs.Path(w.dir, name, harvest.FormatXML)

	doc, err := w.load(path, name)
	if err != nil {
		return err
	}

	root := doc.Root()
	for _, rec := range records {
		item := root.CreateElement(ItemTag)
		values := rec.Map()
		for _, field := range fields {
			value := values[field]
			if value == nil {
				continue
			}
			item.CreateElement(field).SetText(*value)
		}
	}

	doc.Indent(w.indent)
	data, err := doc.WriteToBytes()
	if err != nil {
		return harvest.Errorf(harvest.EWRITE, "encode %s: %v", path, err)
	}
	if err := fs.WriteFileAtomic(path, data); err != nil {
		return harvest.Errorf(harvest.EWRITE, "write %s: %v", path, err)
	}
	return nil
}

// load reads path or, if it does not exist, starts a new document.
func (w *XMLWriter) load(path, name string) (*etree.Document, error) {
	doc := etree.NewDocument()

	if err := doc.ReadFromFile(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, harvest.Errorf(harvest.EWRITE, "read %s: %v", path, err)
		}
		doc = etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
		doc.CreateElement(name)
		return doc, nil
	}

	root := doc.Root()
	if root == nil {
		return nil, harvest.Errorf(harvest.EWRITE, "read %s: no root element", path)
	}
	if root.Tag != name {
		return nil, harvest.Errorf(harvest.EWRITE, "read %s: root element is <%s>, want <%s>", path, root.Tag, name)
	}
	return doc, nil
}

// ReadItems returns the items stored in an XML file written by XMLWriter.
// Each item maps element name to text; absent fields have no key.
func ReadItems(path string) ([]map[string]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "%s: no root element", path)
	}

	var items []map[string]string
	for _, item := range root.SelectElements(ItemTag) {
		m := make(map[string]string)
		for _, child := range item.ChildElements() {
			m[child.Tag] = child.Text()
		}
		items = append(items, m)
	}
	return items, nil
}
