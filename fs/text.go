package fs

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/harvest"
)

// Defaults for TextWriter.
const (
	DefaultSeparator = "---"
	DefaultAbsent    = "<absent>"

	// ContinuationIndent prefixes every line of a value after the first.
	ContinuationIndent = "  "
)

// Ensure TextWriter implements harvest.RecordWriter at compile time.
var _ harvest.RecordWriter = (*TextWriter)(nil)

// Replacement rewrites every match of Pattern in a value with Repl.
// Repl may reference capture groups as in regexp.ReplaceAllString.
type Replacement struct {
	Pattern *regexp.Regexp
	Repl    string
}

// TextWriter appends records to dir/name.txt as blocks of lines.
// Each block holds one value per field in declaration order, optionally
// preceded by an upper-case "NAME:" line, and ends with the separator line.
// An empty match renders as an empty line; an absent field renders as the
// absent placeholder. Existing content is never rewritten.
//
// A multi-line value continues on lines indented by ContinuationIndent.
// A value whose first line could be read as something else (the separator,
// the absent placeholder, a key line, or a line starting with a backslash
// or whitespace) is prefixed with a backslash.
type TextWriter struct {
	dir          string
	separator    string
	absent       string
	keys         bool
	replacements []Replacement
}

// TextOption configures a TextWriter.
type TextOption func(*TextWriter)

// WithSeparator sets the line written after each record.
func WithSeparator(sep string) TextOption {
	return func(w *TextWriter) {
		w.separator = sep
	}
}

// WithAbsent sets the placeholder written for absent fields.
func WithAbsent(placeholder string) TextOption {
	return func(w *TextWriter) {
		w.absent = placeholder
	}
}

// WithKeys writes an upper-case "NAME:" line before each value.
func WithKeys(keys bool) TextOption {
	return func(w *TextWriter) {
		w.keys = keys
	}
}

// WithReplacements applies replacements, in order, to every present value.
func WithReplacements(repl ...Replacement) TextOption {
	return func(w *TextWriter) {
		w.replacements = append(w.replacements, repl...)
	}
}

// NewTextWriter creates a TextWriter writing into dir.
func NewTextWriter(dir string, opts ...TextOption) *TextWriter {
	w := &TextWriter{
		dir:       dir,
		separator: DefaultSeparator,
		absent:    DefaultAbsent,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRecords appends records to the recipe's text file with a single
// write, so a batch is either fully appended or not at all.
func (w *TextWriter) WriteRecords(ctx context.Context, name string, fields []string, records []*harvest.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := w.Format(fields, records)

	path := Path(w.dir, name, harvest.FormatText)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return harvest.Errorf(harvest.EWRITE, "create directory for %s: %v", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return harvest.Errorf(harvest.EWRITE, "open %s: %v", path, err)
	}
	if _, err := f.WriteString(data); err != nil {
		f.Close()
		return harvest.Errorf(harvest.EWRITE, "append %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		return harvest.Errorf(harvest.EWRITE, "close %s: %v", path, err)
	}
	return nil
}

// Format renders records as they are appended to the text file.
func (w *TextWriter) Format(fields []string, records []*harvest.Record) string {
	keyLines := make(map[string]bool, len(fields))
	if w.keys {
		for _, field := range fields {
			keyLines[strings.ToUpper(field)+":"] = true
		}
	}

	var b strings.Builder
	for _, rec := range records {
		values := rec.Map()
		for _, field := range fields {
			if w.keys {
				b.WriteString(strings.ToUpper(field))
				b.WriteString(":\n")
			}
			value := values[field]
			if value == nil {
				b.WriteString(w.absent)
			} else {
				b.WriteString(w.escape(w.replace(*value), keyLines))
			}
			b.WriteString("\n")
		}
		b.WriteString(w.separator)
		b.WriteString("\n")
	}
	return b.String()
}

// escape keeps a value readable as a single field: continuation lines are
// indented and an ambiguous first line gets a leading backslash.
func (w *TextWriter) escape(s string, keyLines map[string]bool) string {
	first, rest, multiline := strings.Cut(s, "\n")
	if first == w.separator || first == w.absent || keyLines[first] ||
		strings.HasPrefix(first, "\\") || strings.HasPrefix(first, " ") || strings.HasPrefix(first, "\t") {
		first = "\\" + first
	}
	if !multiline {
		return first
	}
	return first + "\n" + ContinuationIndent + strings.ReplaceAll(rest, "\n", "\n"+ContinuationIndent)
}

func (w *TextWriter) replace(s string) string {
	for _, r := range w.replacements {
		s = r.Pattern.ReplaceAllString(s, r.Repl)
	}
	return s
}
