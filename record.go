package harvest

// FieldValue is one extracted value. A nil Value means the field's selector
// matched nothing; a pointer to "" means it matched an empty element.
type FieldValue struct {
	Name  string
	Value *string
}

// Record is the result of extracting one Document with a Recipe.
// Values are in field declaration order.
type Record struct {
	Source string
	Values []FieldValue
}

// Get returns the value of the named field.
// The bool result is false if the field is absent or unknown.
func (r *Record) Get(name string) (string, bool) {
	for _, v := range r.Values {
		if v.Name == name {
			if v.Value == nil {
				return "", false
			}
			return *v.Value, true
		}
	}
	return "", false
}

// Absent reports whether the named field matched nothing.
func (r *Record) Absent(name string) bool {
	for _, v := range r.Values {
		if v.Name == name {
			return v.Value == nil
		}
	}
	return true
}

// Map returns the record as a map from field name to value, nil for absent.
func (r *Record) Map() map[string]*string {
	m := make(map[string]*string, len(r.Values))
	for _, v := range r.Values {
		m[v.Name] = v.Value
	}
	return m
}

// Outcome is the tagged result of extracting one document in a batch.
// Exactly one of Record and Err is set.
type Outcome struct {
	Source string
	Record *Record
	Err    error
}

// OK reports whether extraction succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}
