package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/magicorm/schema"
)

// MySQLDialect renders MySQL SQL. It is the reference dialect.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (MySQLDialect) Placeholder(int) string { return "?" }

func (MySQLDialect) ColumnType(col *schema.Column) string {
	switch col.Type {
	case schema.String:
		if col.Size == 0 {
			return fmt.Sprintf("varchar(%d)", schema.DefaultStringSize)
		}
		return sizedType("varchar", col)
	case schema.Number:
		return sizedType("double", col)
	case schema.Boolean:
		return "boolean"
	}
	return sizedType(string(col.Type), col)
}

func (MySQLDialect) AutoIncrement() string { return "auto_increment" }

func (MySQLDialect) InlinePrimaryKey() bool { return true }

func (MySQLDialect) Comments() bool { return true }

func (MySQLDialect) Operator(op string, negated bool) string {
	if op == "$regex" {
		if negated {
			return "not regexp"
		}
		return "regexp"
	}
	return comparison(op, negated)
}

func (MySQLDialect) Not(expr string) string { return "!(" + expr + ")" }

// OffsetOnlyLimit returns the largest unsigned 64-bit row count.
func (MySQLDialect) OffsetOnlyLimit() string { return "limit 18446744073709551615" }

func (MySQLDialect) Returning() bool { return false }

func (MySQLDialect) AbsentValue() string { return "" }

func (d MySQLDialect) Upsert(cols []string, key string) string {
	var sets []string
	for _, c := range cols {
		if c == key {
			continue
		}
		q := d.Quote(c)
		sets = append(sets, fmt.Sprintf("%s = values(%s)", q, q))
	}
	if len(sets) == 0 {
		q := d.Quote(key)
		sets = append(sets, fmt.Sprintf("%s = %s", q, q))
	}
	return "on duplicate key update " + strings.Join(sets, ", ")
}

func (MySQLDialect) Literal(v any) string { return literal(v, true) }
