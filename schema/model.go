package schema

import (
	"fmt"

	"github.com/satishbabariya/magicorm/runtime"
)

// Field pairs a column name with its descriptor.
type Field struct {
	Name string
	Desc *Descriptor
}

// F is shorthand for Field{name, desc}.
func F(name string, desc *Descriptor) Field {
	return Field{Name: name, Desc: desc}
}

// Model is a table: a name and columns in declaration order.
type Model struct {
	name    string
	columns Columns
	index   map[string]*Column
}

// NewModel builds a model from fields in declaration order.
// Primary-key rules are checked when the table is compiled, not here.
func NewModel(name string, fields ...Field) (*Model, error) {
	if name == "" {
		return nil, &runtime.SchemaError{Cause: runtime.ErrSchema, Detail: "model name is empty"}
	}

	m := &Model{
		name:    name,
		columns: make(Columns, 0, len(fields)),
		index:   make(map[string]*Column, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, &runtime.SchemaError{Table: name, Cause: runtime.ErrSchema, Detail: "column name is empty"}
		}
		if f.Desc == nil {
			return nil, &runtime.SchemaError{Table: name, Column: f.Name, Cause: runtime.ErrSchema, Detail: "missing descriptor"}
		}
		if err := f.Desc.Err(); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		if _, ok := m.index[f.Name]; ok {
			return nil, &runtime.SchemaError{Table: name, Column: f.Name, Cause: runtime.ErrSchema, Detail: "column is already defined"}
		}

		col := f.Desc.Column()
		col.Name = f.Name
		col.model = m
		if col.HasDefault && col.Default != nil {
			v, err := col.Decode(col.Default)
			if err != nil {
				return nil, &runtime.SchemaError{Table: name, Column: f.Name, Cause: runtime.ErrInvalidType, Detail: err.Error()}
			}
			col.Default = v
		}

		m.columns = append(m.columns, &col)
		m.index[f.Name] = &col
	}
	return m, nil
}

// MustModel is like NewModel but panics on error. It is meant for
// package-level model declarations.
func MustModel(name string, fields ...Field) *Model {
	m, err := NewModel(name, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the table name.
func (m *Model) Name() string {
	return m.name
}

// Columns returns every column in declaration order.
func (m *Model) Columns() Columns {
	out := make(Columns, len(m.columns))
	copy(out, m.columns)
	return out
}

// Column returns the named column or nil.
func (m *Model) Column(name string) *Column {
	return m.index[name]
}

// PrimaryKey returns the first primary-key column or nil.
func (m *Model) PrimaryKey() *Column {
	for _, c := range m.columns {
		if c.Primary {
			return c
		}
	}
	return nil
}

// Pick returns the named columns. Unknown names are skipped.
func (m *Model) Pick(names ...string) Columns {
	out := make(Columns, 0, len(names))
	for _, n := range names {
		if c, ok := m.index[n]; ok {
			out = append(out, c)
		}
	}
	return out
}

// New creates an entity of this model from field values. Fields not given
// stay absent.
func (m *Model) New(fields map[string]any) *Entity {
	e := &Entity{model: m, fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// Decode tags a backend row with the model, converting known columns.
func (m *Model) Decode(row map[string]any) (*Entity, error) {
	e := &Entity{model: m, fields: make(map[string]any, len(row))}
	for k, v := range row {
		if c, ok := m.index[k]; ok {
			dv, err := c.Decode(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.name, err)
			}
			v = dv
		}
		e.fields[k] = v
	}
	return e, nil
}
