package schema

import "sort"

// Entity is a record tagged with the model that owns its fields.
// The tag is never written to the database.
type Entity struct {
	model  *Model
	fields map[string]any
}

// Model returns the owning model.
func (e *Entity) Model() *Model {
	return e.model
}

// Get returns a field value and whether it is present.
func (e *Entity) Get(name string) (any, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Has reports whether the field is present. A present nil is a SQL null.
func (e *Entity) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// Set stores a field value.
func (e *Entity) Set(name string, v any) {
	e.fields[name] = v
}

// Fields returns a copy of the field map.
func (e *Entity) Fields() map[string]any {
	out := make(map[string]any, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Keys returns the present field names sorted.
func (e *Entity) Keys() []string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
