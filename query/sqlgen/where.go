package sqlgen

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/runtime"
)

// binder collects positional arguments for one statement.
type binder struct {
	d    Dialect
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

// CompileFilter compiles q into a WHERE clause body and its arguments.
// An empty query gives an empty string and no arguments.
func CompileFilter(d Dialect, q filter.Query) (string, []any, error) {
	b := &binder{d: d}
	where, err := b.query("", q)
	if err != nil {
		return "", nil, err
	}
	return where, b.args, nil
}

func (b *binder) query(path string, q filter.Query) (string, error) {
	var frags []string
	for _, f := range q {
		key := join(path, f.Key)

		var (
			frag string
			err  error
		)
		switch f.Key {
		case filter.KeyAnd, filter.KeyOr:
			frag, err = b.group(key, f.Key, f.Value)
		case filter.KeyNot:
			child, ok := f.Value.(filter.Query)
			if !ok {
				return "", runtime.NewUsageError(key, "expected a query, got %T", f.Value)
			}
			frag, err = b.query(key, child)
			if frag != "" {
				frag = b.d.Not(frag)
			}
		default:
			if strings.HasPrefix(f.Key, "$") {
				return "", runtime.NewUsageError(key, "unknown combinator")
			}
			v := filter.NormalizeValue(f.Value)
			if filter.IsUndefined(v) {
				continue
			}
			frag, err = b.column(key, f.Key, v.(filter.Ops), false)
		}
		if err != nil {
			return "", err
		}
		if frag != "" {
			frags = append(frags, frag)
		}
	}
	return strings.Join(frags, " and "), nil
}

func (b *binder) group(path, key string, v any) (string, error) {
	var children []filter.Query
	switch list := v.(type) {
	case []filter.Query:
		children = list
	case []any:
		for i, item := range list {
			child, ok := item.(filter.Query)
			if !ok {
				return "", runtime.NewUsageError(fmt.Sprintf("%s[%d]", path, i), "expected a query, got %T", item)
			}
			children = append(children, child)
		}
	default:
		return "", runtime.NewUsageError(path, "%s value must be a list, got %T", key, v)
	}

	sep := " and "
	if key == filter.KeyOr {
		sep = " or "
	}
	var parts []string
	for i, child := range children {
		frag, err := b.query(fmt.Sprintf("%s[%d]", path, i), child)
		if err != nil {
			return "", err
		}
		if frag != "" {
			parts = append(parts, frag)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// column compiles the operator clause of one column. A negated clause is
// rendered with each operator inverted, so several negated operators are
// OR-joined.
func (b *binder) column(path, col string, ops filter.Ops, negated bool) (string, error) {
	for op := range ops {
		if op != filter.OpNot && b.d.Operator(op, false) == "" {
			return "", runtime.NewUsageError(join(path, op), "unknown operator")
		}
	}

	var clauses []string
	for _, op := range filter.Operators {
		v, ok := ops[op]
		if !ok || filter.IsUndefined(v) {
			continue
		}
		clause, err := b.compare(join(path, op), col, op, v, negated)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	if inner, ok := ops[filter.OpNot]; ok && !filter.IsUndefined(inner) {
		nested, ok := filter.NormalizeValue(inner).(filter.Ops)
		if !ok {
			return "", runtime.NewUsageError(join(path, filter.OpNot), "expected an operator clause, got %T", inner)
		}
		clause, err := b.column(join(path, filter.OpNot), col, nested, !negated)
		if err != nil {
			return "", err
		}
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}

	switch len(clauses) {
	case 0:
		return "", nil
	case 1:
		return clauses[0], nil
	}
	// A negated clause set inverts each operator on its own; the group
	// itself is never negated.
	return "(" + strings.Join(clauses, " and ") + ")", nil
}

func (b *binder) compare(path, col, op string, v any, negated bool) (string, error) {
	quoted := b.d.Quote(col)

	if v == nil && (op == filter.OpEq || op == filter.OpNe) {
		isNull := (op == filter.OpEq) != negated
		if isNull {
			return quoted + " is null", nil
		}
		return quoted + " is not null", nil
	}

	if re, ok := v.(*regexp.Regexp); ok {
		v = re.String()
	}
	if err := checkValue(path, v); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", quoted, b.d.Operator(op, negated), b.bind(v)), nil
}

// checkValue rejects values no SQL driver can bind.
func checkValue(path string, v any) error {
	switch v.(type) {
	case nil, bool, string, []byte, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, driver.Valuer:
		return nil
	}
	return runtime.NewUsageError(path, "unsupported value type %T", v)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
