package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

// Select renders SELECT * over tables. Limit and offset are inlined; a nil
// pointer leaves the clause out.
func Select(d Dialect, tables []string, q filter.Query, limit, offset *int) (*Query, error) {
	if len(tables) == 0 {
		return nil, runtime.NewUsageError("", "no table to select from")
	}

	b := &binder{d: d}
	where, err := b.query("", q)
	if err != nil {
		return nil, err
	}

	parts := []string{"select * from " + strings.Join(quoteAll(d, tables), ", ")}
	if where != "" {
		parts = append(parts, "where "+where)
	}
	if limit != nil {
		parts = append(parts, fmt.Sprintf("limit %d", *limit))
	}
	if offset != nil {
		if limit == nil {
			if s := d.OffsetOnlyLimit(); s != "" {
				parts = append(parts, s)
			}
		}
		parts = append(parts, fmt.Sprintf("offset %d", *offset))
	}

	return &Query{SQL: strings.Join(parts, " ") + ";", Args: b.args}, nil
}

// Insert renders one multi-row INSERT for records of m. Values follow the
// column order of the model. Absent fields take the column default, or the
// dialect's absent value. Dialects with RETURNING read back the primary key.
func Insert(d Dialect, m *schema.Model, records []*schema.Entity) (*Query, error) {
	b := &binder{d: d}
	values, err := insertValues(b, m, records)
	if err != nil {
		return nil, err
	}

	cols := m.Columns().Names()
	sql := fmt.Sprintf("insert into %s (%s) values %s",
		d.Quote(m.Name()), strings.Join(quoteAll(d, cols), ", "), values)
	if pk := m.PrimaryKey(); pk != nil && pk.Autoinc && d.Returning() {
		sql += " returning " + d.Quote(pk.Name)
	}
	return &Query{SQL: sql + ";", Args: b.args}, nil
}

// Upsert renders an INSERT that updates every non-key column when the
// primary key already exists.
func Upsert(d Dialect, m *schema.Model, records []*schema.Entity) (*Query, error) {
	pk := m.PrimaryKey()
	if pk == nil {
		return nil, runtime.NewUsageError(m.Name(), "upsert needs a primary key")
	}

	b := &binder{d: d}
	values, err := insertValues(b, m, records)
	if err != nil {
		return nil, err
	}

	cols := m.Columns().Names()
	sql := fmt.Sprintf("insert into %s (%s) values %s %s;",
		d.Quote(m.Name()), strings.Join(quoteAll(d, cols), ", "), values, d.Upsert(cols, pk.Name))
	return &Query{SQL: sql, Args: b.args}, nil
}

func insertValues(b *binder, m *schema.Model, records []*schema.Entity) (string, error) {
	if len(records) == 0 {
		return "", runtime.NewUsageError(m.Name(), "no records to insert")
	}

	cols := m.Columns()
	groups := make([]string, 0, len(records))
	for i, rec := range records {
		if rec.Model() != m {
			return "", runtime.NewUsageError(fmt.Sprintf("[%d]", i), "record belongs to another model")
		}
		for _, k := range rec.Keys() {
			if m.Column(k) == nil {
				return "", runtime.NewUsageError(fmt.Sprintf("[%d].%s", i, k), "unknown column of %s", m.Name())
			}
		}

		marks := make([]string, len(cols))
		for j, col := range cols {
			v, ok := rec.Get(col.Name)
			switch {
			case ok && !filter.IsUndefined(v):
				if err := checkValue(fmt.Sprintf("[%d].%s", i, col.Name), v); err != nil {
					return "", err
				}
				marks[j] = b.bind(v)
			case col.Required:
				return "", runtime.NewUsageError(fmt.Sprintf("[%d].%s", i, col.Name), "required field is missing")
			case col.HasDefault:
				marks[j] = b.bind(col.Default)
			case b.d.AbsentValue() != "":
				marks[j] = b.d.AbsentValue()
			default:
				marks[j] = b.bind(nil)
			}
		}
		groups = append(groups, "("+strings.Join(marks, ", ")+")")
	}
	return strings.Join(groups, ", "), nil
}

// Delete renders DELETE for rows of m matching q. An empty filter is refused.
func Delete(d Dialect, m *schema.Model, q filter.Query) (*Query, error) {
	b := &binder{d: d}
	where, err := b.query("", q)
	if err != nil {
		return nil, err
	}
	if where == "" {
		return nil, fmt.Errorf("delete from %s: %w", m.Name(), runtime.ErrEmptyFilter)
	}
	return &Query{
		SQL:  fmt.Sprintf("delete from %s where %s;", d.Quote(m.Name()), where),
		Args: b.args,
	}, nil
}

// Update renders UPDATE of the given columns for rows of m matching q.
// Columns are written in model order. An empty filter is refused.
func Update(d Dialect, m *schema.Model, set map[string]any, q filter.Query) (*Query, error) {
	for k := range set {
		if m.Column(k) == nil {
			return nil, runtime.NewUsageError(k, "unknown column of %s", m.Name())
		}
	}

	b := &binder{d: d}
	var sets []string
	for _, col := range m.Columns() {
		v, ok := set[col.Name]
		if !ok || filter.IsUndefined(v) {
			continue
		}
		if err := checkValue(col.Name, v); err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = %s", d.Quote(col.Name), b.bind(v)))
	}
	if len(sets) == 0 {
		return nil, runtime.NewUsageError(m.Name(), "nothing to update")
	}

	where, err := b.query("", q)
	if err != nil {
		return nil, err
	}
	if where == "" {
		return nil, fmt.Errorf("update %s: %w", m.Name(), runtime.ErrEmptyFilter)
	}
	return &Query{
		SQL:  fmt.Sprintf("update %s set %s where %s;", d.Quote(m.Name()), strings.Join(sets, ", "), where),
		Args: b.args,
	}, nil
}
