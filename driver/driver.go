// Package driver defines the backend adapter boundary and the registry that
// resolves backend identifiers to driver factories.
package driver

import (
	"context"

	"github.com/satishbabariya/magicorm/query/executor"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/selector"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime/client"
	"github.com/satishbabariya/magicorm/schema"
)

// Options configures a backend connection. DSN, when set, wins over the
// individual fields.
type Options struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Params   map[string]string

	// Middleware is added to the connection after the debug logger.
	Middleware []client.Middleware
}

// TxOptions configures a transaction. The zero value uses the backend
// defaults.
type TxOptions struct {
	Isolation client.IsolationLevel
	ReadOnly  bool
}

// OperateOptions is passed to every operation. Transaction is an opaque
// handle obtained from Conn.Transaction; nil runs on the connection itself.
type OperateOptions struct {
	Transaction any
}

// Conn is one logical connection to a backend.
type Conn interface {
	executor.Execer

	// Use returns the statement runner for a transaction handle. A nil
	// handle returns the connection.
	Use(handle any) (executor.Execer, error)

	// Transaction runs fn with a transaction handle, committing when fn
	// returns nil and rolling back otherwise.
	Transaction(ctx context.Context, opts TxOptions, fn func(handle any) error) error

	Close(ctx context.Context) error
}

// Driver is a backend adapter. It owns the dialect and the translation of
// backend errors.
type Driver interface {
	Name() string
	Options() Options
	Dialect() sqlgen.Dialect

	Connect(ctx context.Context) (Conn, error)

	CreateTable(ctx context.Context, conn Conn, m *schema.Model, opts OperateOptions) error
	DropTable(ctx context.Context, conn Conn, name string, opts OperateOptions) error
	Insert(ctx context.Context, conn Conn, records []*schema.Entity, opts OperateOptions) ([]*schema.Entity, error)
	Delete(ctx context.Context, conn Conn, m *schema.Model, opts OperateOptions, queries ...filter.Query) (int64, error)
	Update(ctx context.Context, conn Conn, m *schema.Model, set map[string]any, opts OperateOptions, queries ...filter.Query) (int64, error)
	Upsert(ctx context.Context, conn Conn, records []*schema.Entity, opts OperateOptions) (int64, error)
	Search(conn Conn, opts OperateOptions, props ...schema.Columns) *selector.Selector
}

// Factory creates a driver from options.
type Factory func(opts Options) (Driver, error)
