package schema

import (
	"fmt"

	"github.com/satishbabariya/magicorm/runtime"
)

// Descriptor builds a column definition step by step:
//
//	schema.Prop("varchar(72)").NotNull().Unique().Comment("login name")
//
// Each property may be set once. The first error is kept and reported when the
// model is built.
type Descriptor struct {
	col Column
	set map[string]bool
	err error
}

// Prop starts a descriptor from a type spec such as "int" or "varchar(72)".
func Prop(spec string) *Descriptor {
	d := &Descriptor{set: make(map[string]bool)}
	ts, err := ParseType(spec)
	if err != nil {
		d.err = err
		return d
	}
	d.col.Type = ts.Type
	d.col.Size = ts.Size
	d.col.Scale = ts.Scale
	if ts.Size > 0 {
		d.set["size"] = true
	}
	return d
}

func (d *Descriptor) define(key string, apply func(c *Column)) *Descriptor {
	if d.err != nil {
		return d
	}
	if d.set[key] {
		d.err = &runtime.SchemaError{
			Cause:  runtime.ErrPropertyDefined,
			Detail: fmt.Sprintf("property '%s' is already defined", key),
		}
		return d
	}
	d.set[key] = true
	apply(&d.col)
	return d
}

func (d *Descriptor) Unique() *Descriptor {
	return d.define("unique", func(c *Column) { c.Unique = true })
}

func (d *Descriptor) Primary() *Descriptor {
	return d.define("primary", func(c *Column) { c.Primary = true })
}

// Autoinc marks the column auto-increment. It must also be the primary key.
func (d *Descriptor) Autoinc() *Descriptor {
	return d.define("autoinc", func(c *Column) { c.Autoinc = true })
}

func (d *Descriptor) NotNull() *Descriptor {
	return d.define("notnull", func(c *Column) { c.NotNull = true })
}

func (d *Descriptor) Required() *Descriptor {
	return d.define("required", func(c *Column) { c.Required = true })
}

// Size sets the length of a sizeable type.
func (d *Descriptor) Size(n int) *Descriptor {
	if d.err == nil && (!d.col.Type.Sizeable() || n <= 0) {
		d.err = &runtime.SchemaError{Cause: runtime.ErrInvalidSize, Detail: fmt.Sprintf("%s(%d)", d.col.Type, n)}
		return d
	}
	return d.define("size", func(c *Column) { c.Size = n })
}

// Default sets the default value; it is converted to the column type when the
// model is built.
func (d *Descriptor) Default(v any) *Descriptor {
	return d.define("default", func(c *Column) {
		c.Default = v
		c.HasDefault = true
	})
}

func (d *Descriptor) Comment(s string) *Descriptor {
	return d.define("comment", func(c *Column) { c.Comment = s })
}

// Err returns the first error recorded while describing the column.
func (d *Descriptor) Err() error {
	return d.err
}

// Column returns a copy of the described column.
func (d *Descriptor) Column() Column {
	return d.col
}
