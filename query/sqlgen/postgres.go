package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/magicorm/schema"
)

// PostgresDialect renders PostgreSQL SQL.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (PostgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (PostgresDialect) ColumnType(col *schema.Column) string {
	if col.Autoinc {
		if col.Type == schema.BigInt {
			return "bigserial"
		}
		return "serial"
	}
	switch col.Type {
	case schema.String:
		if col.Size == 0 {
			return fmt.Sprintf("varchar(%d)", schema.DefaultStringSize)
		}
		return sizedType("varchar", col)
	case schema.Int, schema.Integer, schema.MediumInt:
		return "integer"
	case schema.TinyInt, schema.SmallInt, schema.Year:
		return "smallint"
	case schema.BigInt:
		return "bigint"
	case schema.Number, schema.Decimal:
		return sizedType("numeric", col)
	case schema.Float:
		return "real"
	case schema.Double:
		return "double precision"
	case schema.TinyText, schema.MediumText, schema.LongText:
		return "text"
	case schema.DateTime:
		return "timestamp"
	}
	return sizedType(string(col.Type), col)
}

func (PostgresDialect) AutoIncrement() string { return "" }

func (PostgresDialect) InlinePrimaryKey() bool { return false }

func (PostgresDialect) Comments() bool { return false }

func (PostgresDialect) Operator(op string, negated bool) string {
	if op == "$regex" {
		if negated {
			return "!~"
		}
		return "~"
	}
	return comparison(op, negated)
}

func (PostgresDialect) Not(expr string) string { return "not (" + expr + ")" }

func (PostgresDialect) OffsetOnlyLimit() string { return "" }

func (PostgresDialect) Returning() bool { return true }

func (PostgresDialect) AbsentValue() string { return "default" }

func (d PostgresDialect) Upsert(cols []string, key string) string {
	return conflictUpdate(d, cols, key)
}

func (PostgresDialect) Literal(v any) string { return literal(v, false) }
