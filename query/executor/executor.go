// Package executor runs compiled statements against a connection and maps
// rows back to entities.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/magicorm/internal/debug"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/selector"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/schema"
)

// Execer issues statements on one logical connection. Query returns rows as
// column name to value maps.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// Executor executes statements for one dialect
type Executor struct {
	x       Execer
	dialect sqlgen.Dialect
}

// New creates a new executor
func New(x Execer, d sqlgen.Dialect) *Executor {
	return &Executor{x: x, dialect: d}
}

// Dialect returns the dialect statements are compiled for.
func (e *Executor) Dialect() sqlgen.Dialect {
	return e.dialect
}

// CreateTable creates the table of m.
func (e *Executor) CreateTable(ctx context.Context, m *schema.Model) error {
	ddl, err := sqlgen.CompileCreateTable(e.dialect, m)
	if err != nil {
		return err
	}
	debug.Debug("create table", "table", m.Name())
	if _, err := e.x.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", m.Name(), err)
	}
	return nil
}

// DropTable drops the named table.
func (e *Executor) DropTable(ctx context.Context, name string) error {
	debug.Debug("drop table", "table", name)
	if _, err := e.x.Exec(ctx, sqlgen.CompileDropTable(e.dialect, name)); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	return nil
}

// Search returns a selector over props. Nothing is executed until the
// selector is consumed.
func (e *Executor) Search(props ...schema.Columns) *selector.Selector {
	return selector.New(e.search, props...)
}

func (e *Executor) search(ctx context.Context, s *selector.Selector) ([]*schema.Entity, error) {
	models := s.Models()
	tables := make([]string, len(models))
	for i, m := range models {
		tables[i] = m.Name()
	}

	opts := s.Options()
	q, err := sqlgen.Select(e.dialect, tables, s.Filter(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}

	rows, err := e.x.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}

	// Rows are tagged with the first model, also for multi-table selects.
	owner := models[0]
	entities := make([]*schema.Entity, 0, len(rows))
	for _, row := range rows {
		ent, err := owner.Decode(row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, ent)
	}
	return entities, nil
}

// Delete deletes rows of m matching any of queries and returns the number
// of rows removed.
func (e *Executor) Delete(ctx context.Context, m *schema.Model, queries ...filter.Query) (int64, error) {
	q, err := sqlgen.Delete(e.dialect, m, filter.Resolve(queries...))
	if err != nil {
		return 0, err
	}
	return e.affected(ctx, q)
}

// Update sets columns on rows of m matching any of queries and returns the
// number of rows changed.
func (e *Executor) Update(ctx context.Context, m *schema.Model, set map[string]any, queries ...filter.Query) (int64, error) {
	q, err := sqlgen.Update(e.dialect, m, set, filter.Resolve(queries...))
	if err != nil {
		return 0, err
	}
	return e.affected(ctx, q)
}

// Upsert inserts records, updating existing rows with the same primary key.
func (e *Executor) Upsert(ctx context.Context, records []*schema.Entity) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	q, err := sqlgen.Upsert(e.dialect, records[0].Model(), records)
	if err != nil {
		return 0, err
	}
	return e.affected(ctx, q)
}

func (e *Executor) affected(ctx context.Context, q *sqlgen.Query) (int64, error) {
	res, err := e.x.Exec(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
