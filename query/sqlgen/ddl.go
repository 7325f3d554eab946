package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

// CompileCreateTable renders the CREATE TABLE statement for m. A table may
// have one primary key, and only the primary key may auto-increment.
func CompileCreateTable(d Dialect, m *schema.Model) (string, error) {
	var (
		defs []string
		pk   *schema.Column
	)
	for _, col := range m.Columns() {
		if col.Primary {
			if pk != nil {
				return "", &runtime.SchemaError{
					Table:  m.Name(),
					Column: pk.Name,
					Cause:  runtime.ErrDuplicatePrimaryKey,
					Detail: fmt.Sprintf("%s is declared after primary key %s", col.Name, pk.Name),
				}
			}
			pk = col
		}
		if col.Autoinc && !col.Primary {
			return "", &runtime.SchemaError{Table: m.Name(), Column: col.Name, Cause: runtime.ErrAutoincWithoutPrimary}
		}

		defs = append(defs, columnDef(d, col))
		if col.Primary && d.InlinePrimaryKey() {
			defs = append(defs, primaryKey(m.Name(), col.Name))
		}
	}
	if pk != nil && !d.InlinePrimaryKey() {
		defs = append(defs, primaryKey(m.Name(), pk.Name))
	}

	return fmt.Sprintf("create table %s (%s);", d.Quote(m.Name()), strings.Join(defs, ", ")), nil
}

// CompileDropTable renders the DROP TABLE statement for a table.
func CompileDropTable(d Dialect, name string) string {
	return fmt.Sprintf("drop table %s;", d.Quote(name))
}

func columnDef(d Dialect, col *schema.Column) string {
	parts := []string{d.Quote(col.Name), d.ColumnType(col)}
	if col.NotNull {
		parts = append(parts, "not null")
	}
	if col.HasDefault {
		parts = append(parts, "default "+d.Literal(col.Default))
	}
	if col.Autoinc {
		if s := d.AutoIncrement(); s != "" {
			parts = append(parts, s)
		}
	}
	if col.Unique {
		parts = append(parts, "unique")
	}
	if col.Comment != "" && d.Comments() {
		parts = append(parts, "comment "+d.Literal(col.Comment))
	}
	return strings.Join(parts, " ")
}

func primaryKey(table, col string) string {
	return fmt.Sprintf("constraint %s_pk primary key (%s)", table, col)
}
