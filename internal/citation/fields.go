package citation

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields holds bibliography fields in the order they were extracted.
type Fields struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewFields returns an empty field set.
func NewFields() *Fields {
	return &Fields{m: orderedmap.New[string, string]()}
}

// Set records a field. Empty values are ignored; setting an existing name
// keeps its original position.
func (f *Fields) Set(name, value string) {
	if value == "" {
		return
	}
	f.m.Set(name, value)
}

// Get returns the value of a field.
func (f *Fields) Get(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	return f.m.Get(name)
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return f.m.Len()
}

// Names returns field names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, f.m.Len())
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Each calls fn for every field in insertion order.
func (f *Fields) Each(fn func(name, value string)) {
	if f == nil {
		return
	}
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
