package schema

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Column is a column definition. The model reference is a non-owning
// back-pointer used to find the tables a query touches.
type Column struct {
	Name       string
	Type       Type
	Size       int
	Scale      int
	Unique     bool
	Primary    bool
	Autoinc    bool
	NotNull    bool
	Required   bool
	Default    any
	HasDefault bool
	Comment    string

	model *Model
}

// Model returns the model that owns the column.
func (c *Column) Model() *Model {
	return c.model
}

// Spec returns the type spec of the column.
func (c *Column) Spec() TypeSpec {
	return TypeSpec{Type: c.Type, Size: c.Size, Scale: c.Scale}
}

// Decode converts a value read from a backend into the Go type that
// matches the column type. Nil stays nil.
func (c *Column) Decode(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	var (
		out any
		err error
	)
	switch {
	case c.Type == Boolean:
		out, err = cast.ToBoolE(v)
	case c.Type.IsInteger():
		out, err = cast.ToInt64E(v)
	case c.Type == Decimal:
		out, err = cast.ToStringE(v)
	case c.Type.IsNumeric():
		out, err = cast.ToFloat64E(v)
	case c.Type == Time:
		if t, ok := v.(time.Time); ok {
			return t.Format(time.TimeOnly), nil
		}
		out, err = cast.ToStringE(v)
	case c.Type.IsDate():
		out, err = cast.ToTimeE(v)
	default:
		out, err = cast.ToStringE(v)
	}
	if err != nil {
		return nil, fmt.Errorf("column %s: cannot decode %T as %s: %w", c.Name, v, c.Type, err)
	}
	return out, nil
}

// Columns is an ordered set of columns, possibly from several models.
type Columns []*Column

// Names returns the column names in order.
func (cs Columns) Names() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

// Models returns the distinct owning models in first-seen order.
func (cs Columns) Models() []*Model {
	var models []*Model
	seen := make(map[*Model]bool)
	for _, c := range cs {
		if c.model == nil || seen[c.model] {
			continue
		}
		seen[c.model] = true
		models = append(models, c.model)
	}
	return models
}
