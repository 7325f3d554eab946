// Package engine ties a driver, its connection and the registered models
// together. It is the entry point for applications:
//
//	e, err := engine.New(engine.Options{Driver: "sqlite"})
//	...
//	err = e.Register(user, post)
//	err = e.Connect(ctx)
//	users, err := e.Search(user.Columns()).Where(filter.Where("age", filter.Gt(18))).All(ctx)
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/internal/debug"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/selector"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

// M2DDL selects the DDL run for registered models on Connect.
type M2DDL string

const (
	// M2DDLNone runs no DDL.
	M2DDLNone M2DDL = "none"
	// M2DDLDrop drops every model table.
	M2DDLDrop M2DDL = "drop"
	// M2DDLDropCreate drops, then creates every model table.
	M2DDLDropCreate M2DDL = "drop-create"
	// M2DDLCreate creates every model table.
	M2DDLCreate M2DDL = "create"
)

// ParseM2DDL validates a mode name. The empty string means M2DDLCreate.
func ParseM2DDL(s string) (M2DDL, error) {
	switch m := M2DDL(s); m {
	case "":
		return M2DDLCreate, nil
	case M2DDLNone, M2DDLDrop, M2DDLDropCreate, M2DDLCreate:
		return m, nil
	default:
		return "", fmt.Errorf("invalid m2ddl mode %q", s)
	}
}

func (m M2DDL) drops() bool   { return m == M2DDLDrop || m == M2DDLDropCreate }
func (m M2DDL) creates() bool { return m == M2DDLCreate || m == M2DDLDropCreate }

// Options configures an Engine.
type Options struct {
	// Driver is the backend identifier, resolved through the driver
	// registry. It must be a string.
	Driver        any
	DriverOptions driver.Options
	M2DDL         M2DDL
}

type state struct {
	opts   Options
	driver driver.Driver

	mu     sync.RWMutex
	models []*schema.Model
	conn   driver.Conn
	ddlRan bool
}

// Engine runs operations for registered models on one connection. Values
// returned by WithOptions and Transaction share the connection and models
// with the engine they came from.
type Engine struct {
	*state
	op driver.OperateOptions
}

// New resolves the driver and returns an unconnected engine.
func New(opts Options) (*Engine, error) {
	mode, err := ParseM2DDL(string(opts.M2DDL))
	if err != nil {
		return nil, err
	}
	opts.M2DDL = mode

	d, err := driver.Create(opts.Driver, opts.DriverOptions)
	if err != nil {
		return nil, err
	}
	return &Engine{state: &state{opts: opts, driver: d}}, nil
}

// Driver returns the backend driver.
func (e *Engine) Driver() driver.Driver { return e.driver }

// Options returns the options the engine was created with.
func (e *Engine) Options() Options { return e.opts }

// Models returns the registered models in registration order.
func (e *Engine) Models() []*schema.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*schema.Model, len(e.models))
	copy(out, e.models)
	return out
}

// Register attaches models to the engine. Table names must be unique.
// Models registered after Connect get no DDL.
func (e *Engine) Register(models ...*schema.Model) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, m := range models {
		if m == nil {
			return &runtime.SchemaError{Cause: runtime.ErrSchema, Detail: "model is nil"}
		}
		for _, have := range e.models {
			if have.Name() == m.Name() {
				return &runtime.SchemaError{Table: m.Name(), Cause: runtime.ErrSchema, Detail: "model is already registered"}
			}
		}
		e.models = append(e.models, m)
	}
	return nil
}

// Connect opens the connection and, the first time, applies the M2DDL
// mode to the registered models. Connecting twice is a no-op. When the
// DDL fails the connection is closed and the next Connect retries it.
func (e *Engine) Connect(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn != nil {
		return nil
	}
	conn, err := e.driver.Connect(ctx)
	if err != nil {
		return err
	}

	if !e.ddlRan {
		if err := e.m2ddl(ctx, conn); err != nil {
			if cerr := conn.Close(ctx); cerr != nil {
				debug.Warn("close after failed m2ddl", "error", cerr)
			}
			return err
		}
		e.ddlRan = true
	}
	e.conn = conn
	return nil
}

func (e *Engine) m2ddl(ctx context.Context, conn driver.Conn) error {
	mode := e.opts.M2DDL
	debug.Debug("m2ddl", "mode", string(mode), "models", len(e.models))

	if mode.drops() {
		for _, m := range e.models {
			// The table may not exist yet.
			if err := e.driver.DropTable(ctx, conn, m.Name(), e.op); err != nil {
				debug.Warn("drop table failed", "table", m.Name(), "error", err)
			}
		}
	}
	if mode.creates() {
		for _, m := range e.models {
			if err := e.driver.CreateTable(ctx, conn, m, e.op); err != nil {
				return fmt.Errorf("create table %s: %w", m.Name(), err)
			}
		}
	}
	return nil
}

// Close closes the connection. Closing an unconnected engine returns
// runtime.ErrUnconnected.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn == nil {
		return runtime.ErrUnconnected
	}
	err := e.conn.Close(ctx)
	e.conn = nil
	return err
}

func (e *Engine) connection() (driver.Conn, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.conn == nil {
		return nil, runtime.ErrUnconnected
	}
	return e.conn, nil
}

// WithOptions returns an engine that passes op to every operation.
func (e *Engine) WithOptions(op driver.OperateOptions) *Engine {
	return &Engine{state: e.state, op: op}
}

// Transaction runs fn with an engine bound to a transaction. The
// transaction commits when fn returns nil.
func (e *Engine) Transaction(ctx context.Context, fn func(tx *Engine) error) error {
	return e.TransactionWithOptions(ctx, driver.TxOptions{}, fn)
}

// TransactionWithOptions is Transaction with an isolation level and
// read-only flag.
func (e *Engine) TransactionWithOptions(ctx context.Context, opts driver.TxOptions, fn func(tx *Engine) error) error {
	conn, err := e.connection()
	if err != nil {
		return err
	}
	return conn.Transaction(ctx, opts, func(handle any) error {
		return fn(e.WithOptions(driver.OperateOptions{Transaction: handle}))
	})
}

// Insert writes records of one model and returns them with generated keys
// filled in.
func (e *Engine) Insert(ctx context.Context, records ...*schema.Entity) ([]*schema.Entity, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	return e.driver.Insert(ctx, conn, records, e.op)
}

// Search starts a selector over props. Rows are tagged with the model of
// the first property.
func (e *Engine) Search(props ...schema.Columns) *selector.Selector {
	conn, err := e.connection()
	if err != nil {
		return selector.New(func(context.Context, *selector.Selector) ([]*schema.Entity, error) {
			return nil, err
		}, props...)
	}
	return e.driver.Search(conn, e.op, props...)
}

// Delete removes rows of m matching any of queries.
func (e *Engine) Delete(ctx context.Context, m *schema.Model, queries ...filter.Query) (int64, error) {
	conn, err := e.connection()
	if err != nil {
		return 0, err
	}
	return e.driver.Delete(ctx, conn, m, e.op, queries...)
}

// Update sets columns on rows of m matching any of queries.
func (e *Engine) Update(ctx context.Context, m *schema.Model, set map[string]any, queries ...filter.Query) (int64, error) {
	conn, err := e.connection()
	if err != nil {
		return 0, err
	}
	return e.driver.Update(ctx, conn, m, set, e.op, queries...)
}

// Upsert inserts records, replacing rows with the same primary key.
func (e *Engine) Upsert(ctx context.Context, records ...*schema.Entity) (int64, error) {
	conn, err := e.connection()
	if err != nil {
		return 0, err
	}
	return e.driver.Upsert(ctx, conn, records, e.op)
}

// Query runs a raw statement on the connection, or on the transaction the
// engine is bound to, and returns its rows.
func (e *Engine) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	conn, err := e.connection()
	if err != nil {
		return nil, err
	}
	x, err := conn.Use(e.op.Transaction)
	if err != nil {
		return nil, err
	}
	return x.Query(ctx, query, args...)
}
