package harvest

import (
	"regexp"
	"strings"
)

// FieldMode selects what is read from a matched node.
type FieldMode string

// Supported field modes.
const (
	ModeText     FieldMode = "text"
	ModeHTML     FieldMode = "html"
	ModeMarkdown FieldMode = "markdown"
	ModeAttr     FieldMode = "attr"
)

// Field declares how one named value is located in a document.
type Field struct {
	Name     string    `yaml:"-"`
	Selector string    `yaml:"selector"`
	Mode     FieldMode `yaml:"mode"`
	Attr     string    `yaml:"attr"`
}

// Names become XML element names and SQL column names.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate returns an error if the field contains invalid settings.
// The selector itself is checked when the field is compiled.
func (f *Field) Validate() error {
	if f.Name == "" {
		return Errorf(EINVALID, "field name required")
	}
	if !identifier.MatchString(f.Name) {
		return Errorf(EINVALID, "field name %q must be a letter or underscore followed by letters, digits or underscores", f.Name)
	}
	if strings.TrimSpace(f.Selector) == "" {
		return Errorf(EEMPTYSELECTOR, "field %q: selector is empty", f.Name)
	}
	switch f.Mode {
	case "", ModeText, ModeHTML, ModeMarkdown:
	case ModeAttr:
		if f.Attr == "" {
			return Errorf(EINVALID, "field %q: attribute name required for mode %q", f.Name, ModeAttr)
		}
	default:
		return Errorf(EINVALID, "field %q: unknown mode %q", f.Name, f.Mode)
	}
	return nil
}

type compiledField struct {
	Field
	sel *CompiledSelector
}

// FieldMap is an ordered, validated set of fields. Iteration order is the
// declaration order and determines output order in every format.
// A FieldMap is immutable after construction.
type FieldMap struct {
	fields []compiledField
}

// NewFieldMap validates fields and compiles their selectors with engine.
// Returns EDUPLICATEFIELD, EEMPTYSELECTOR, EINVALIDSELECTOR or EINVALID;
// no FieldMap is returned on error.
func NewFieldMap(engine SelectorEngine, fields ...Field) (*FieldMap, error) {
	if len(fields) == 0 {
		return nil, Errorf(EINVALID, "at least one field required")
	}

	// SQL column names are case-insensitive, so names are compared folded.
	seen := make(map[string]string, len(fields))
	compiled := make([]compiledField, 0, len(fields))

	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(f.Name)
		if prev, ok := seen[key]; ok {
			if prev == f.Name {
				return nil, Errorf(EDUPLICATEFIELD, "duplicate field name %q", f.Name)
			}
			return nil, Errorf(EDUPLICATEFIELD, "field name %q differs from %q only by case", f.Name, prev)
		}
		seen[key] = f.Name

		sel, err := CompileSelector(engine, f.Selector)
		if err != nil {
			return nil, Errorf(ErrorCode(err), "field %q: %s", f.Name, ErrorMessage(err))
		}
		if f.Mode == "" {
			f.Mode = ModeText
		}
		compiled = append(compiled, compiledField{Field: f, sel: sel})
	}

	return &FieldMap{fields: compiled}, nil
}

// Names returns the field names in declaration order.
func (m *FieldMap) Names() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the declared fields in order.
func (m *FieldMap) Fields() []Field {
	fields := make([]Field, len(m.fields))
	for i, f := range m.fields {
		fields[i] = f.Field
	}
	return fields
}

// Selector returns the compiled selector of the named field.
func (m *FieldMap) Selector(name string) (Selector, bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f.sel.Selector, true
		}
	}
	return Selector{}, false
}

// Len returns the number of fields.
func (m *FieldMap) Len() int {
	return len(m.fields)
}
