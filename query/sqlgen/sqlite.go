package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/magicorm/schema"
)

// SQLiteDialect renders SQLite SQL. Integer primary keys are declared as
// "integer" so they alias the rowid and are generated on a null insert.
// The regexp operator needs the function registered by driver/sqlite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) ColumnType(col *schema.Column) string {
	if col.Primary && col.Type.IsInteger() {
		return "integer"
	}
	switch col.Type {
	case schema.String:
		if col.Size == 0 {
			return fmt.Sprintf("varchar(%d)", schema.DefaultStringSize)
		}
		return sizedType("varchar", col)
	case schema.Number:
		return "real"
	}
	return sizedType(string(col.Type), col)
}

func (SQLiteDialect) AutoIncrement() string { return "" }

func (SQLiteDialect) InlinePrimaryKey() bool { return false }

func (SQLiteDialect) Comments() bool { return false }

func (SQLiteDialect) Operator(op string, negated bool) string {
	if op == "$regex" {
		if negated {
			return "not regexp"
		}
		return "regexp"
	}
	return comparison(op, negated)
}

func (SQLiteDialect) Not(expr string) string { return "not (" + expr + ")" }

func (SQLiteDialect) OffsetOnlyLimit() string { return "limit -1" }

func (SQLiteDialect) Returning() bool { return true }

func (SQLiteDialect) AbsentValue() string { return "" }

func (d SQLiteDialect) Upsert(cols []string, key string) string {
	return conflictUpdate(d, cols, key)
}

func (SQLiteDialect) Literal(v any) string { return literal(v, false) }

// conflictUpdate renders the ON CONFLICT form shared by SQLite and Postgres.
func conflictUpdate(d Dialect, cols []string, key string) string {
	var sets []string
	for _, c := range cols {
		if c == key {
			continue
		}
		q := d.Quote(c)
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", q, q))
	}
	if len(sets) == 0 {
		return fmt.Sprintf("on conflict (%s) do nothing", d.Quote(key))
	}
	return fmt.Sprintf("on conflict (%s) do update set %s", d.Quote(key), strings.Join(sets, ", "))
}
