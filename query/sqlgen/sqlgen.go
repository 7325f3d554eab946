// Package sqlgen compiles models and query trees into SQL for a dialect.
package sqlgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/satishbabariya/magicorm/schema"
)

// Query represents a SQL statement with arguments
type Query struct {
	SQL  string
	Args []any
}

// Dialect holds the backend-specific parts of SQL rendering.
type Dialect interface {
	// Name returns the dialect identifier, e.g. "mysql".
	Name() string

	// Quote quotes an identifier.
	Quote(ident string) string

	// Placeholder returns the bind marker for the n-th argument, counting from 1.
	Placeholder(n int) string

	// ColumnType renders the SQL type of a column, size included.
	ColumnType(col *schema.Column) string

	// AutoIncrement returns the column suffix for auto-increment keys, or "".
	AutoIncrement() string

	// InlinePrimaryKey reports whether the primary-key constraint is written
	// right after the key column instead of after the column list.
	InlinePrimaryKey() bool

	// Comments reports whether column comments are part of a column definition.
	Comments() bool

	// Operator maps a filter operator to SQL, or "" when unsupported.
	Operator(op string, negated bool) string

	// Not negates a whole boolean expression.
	Not(expr string) string

	// OffsetOnlyLimit returns the LIMIT clause required before an OFFSET
	// when no limit was given, or "".
	OffsetOnlyLimit() string

	// Returning reports whether inserted keys are read back with RETURNING.
	Returning() bool

	// AbsentValue returns the inline value used for absent insert fields.
	// An empty string binds a null instead.
	AbsentValue() string

	// Upsert returns the conflict clause appended to an insert.
	Upsert(cols []string, key string) string

	// Literal renders a constant for DDL defaults.
	Literal(v any) string
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQLDialect{}, nil
	case "sqlite", "sqlite3":
		return SQLiteDialect{}, nil
	case "postgres", "postgresql", "pg":
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// comparisons maps operators to their SQL form and its negation.
var comparisons = map[string][2]string{
	"$eq":   {"=", "!="},
	"$ne":   {"!=", "="},
	"$gt":   {">", "<="},
	"$gte":  {">=", "<"},
	"$lt":   {"<", ">="},
	"$lte":  {"<=", ">"},
	"$like": {"like", "not like"},
}

func comparison(op string, negated bool) string {
	pair, ok := comparisons[op]
	if !ok {
		return ""
	}
	if negated {
		return pair[1]
	}
	return pair[0]
}

// literal renders v as a SQL constant. backslash controls whether
// backslashes are escaped inside strings, as MySQL requires.
func literal(v any, backslash bool) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return quoteString(x, backslash)
	case []byte:
		return quoteString(string(x), backslash)
	case time.Time:
		return quoteString(x.Format(time.DateTime), backslash)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	default:
		return quoteString(fmt.Sprint(x), backslash)
	}
}

func quoteString(s string, backslash bool) string {
	if backslash {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// sizedType renders t with the size and scale of col when set.
func sizedType(t string, col *schema.Column) string {
	switch {
	case col.Size == 0:
		return t
	case col.Scale == 0:
		return fmt.Sprintf("%s(%d)", t, col.Size)
	default:
		return fmt.Sprintf("%s(%d,%d)", t, col.Size, col.Scale)
	}
}

func quoteAll(d Dialect, idents []string) []string {
	out := make([]string, len(idents))
	for i, id := range idents {
		out[i] = d.Quote(id)
	}
	return out
}
