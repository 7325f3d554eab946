package driver

import (
	"context"

	"github.com/satishbabariya/magicorm/query/executor"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/selector"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/runtime/client"
	"github.com/satishbabariya/magicorm/schema"
)

// SQLConfig describes a database/sql backed driver.
type SQLConfig struct {
	// Name is the short backend identifier, e.g. "mysql".
	Name string
	// SQLDriver is the database/sql driver name passed to sql.Open.
	SQLDriver string
	Dialect   sqlgen.Dialect
	// DSN builds the data source name from options.
	DSN func(Options) (string, error)
	// Translate maps backend errors into runtime errors.
	Translate client.Translator
	// OnConnect runs once after the connection is established.
	OnConnect func(ctx context.Context, c *client.Client) error
}

// SQLDriver implements Driver on top of database/sql.
type SQLDriver struct {
	cfg  SQLConfig
	opts Options
}

// NewSQLDriver creates a driver from cfg and connection options.
func NewSQLDriver(cfg SQLConfig, opts Options) *SQLDriver {
	return &SQLDriver{cfg: cfg, opts: opts}
}

func (d *SQLDriver) Name() string            { return d.cfg.Name }
func (d *SQLDriver) Options() Options        { return d.opts }
func (d *SQLDriver) Dialect() sqlgen.Dialect { return d.cfg.Dialect }

// Connect opens one logical connection.
func (d *SQLDriver) Connect(ctx context.Context) (Conn, error) {
	dsn := d.opts.DSN
	if d.cfg.DSN != nil {
		var err error
		if dsn, err = d.cfg.DSN(d.opts); err != nil {
			return nil, err
		}
	}

	c, err := client.Open(ctx, d.cfg.SQLDriver, dsn, d.cfg.Translate)
	if err != nil {
		return nil, err
	}
	c.Use(client.LoggingMiddleware())
	for _, m := range d.opts.Middleware {
		c.Use(m)
	}

	if d.cfg.OnConnect != nil {
		if err := d.cfg.OnConnect(ctx, c); err != nil {
			_ = c.Close(ctx)
			return nil, err
		}
	}
	return &SQLConn{Client: c}, nil
}

func (d *SQLDriver) executor(conn Conn, opts OperateOptions) (*executor.Executor, error) {
	x, err := conn.Use(opts.Transaction)
	if err != nil {
		return nil, err
	}
	return executor.New(x, d.cfg.Dialect), nil
}

func (d *SQLDriver) CreateTable(ctx context.Context, conn Conn, m *schema.Model, opts OperateOptions) error {
	e, err := d.executor(conn, opts)
	if err != nil {
		return err
	}
	return e.CreateTable(ctx, m)
}

func (d *SQLDriver) DropTable(ctx context.Context, conn Conn, name string, opts OperateOptions) error {
	e, err := d.executor(conn, opts)
	if err != nil {
		return err
	}
	return e.DropTable(ctx, name)
}

func (d *SQLDriver) Insert(ctx context.Context, conn Conn, records []*schema.Entity, opts OperateOptions) ([]*schema.Entity, error) {
	e, err := d.executor(conn, opts)
	if err != nil {
		return nil, err
	}
	return e.Insert(ctx, records)
}

func (d *SQLDriver) Delete(ctx context.Context, conn Conn, m *schema.Model, opts OperateOptions, queries ...filter.Query) (int64, error) {
	e, err := d.executor(conn, opts)
	if err != nil {
		return 0, err
	}
	return e.Delete(ctx, m, queries...)
}

func (d *SQLDriver) Update(ctx context.Context, conn Conn, m *schema.Model, set map[string]any, opts OperateOptions, queries ...filter.Query) (int64, error) {
	e, err := d.executor(conn, opts)
	if err != nil {
		return 0, err
	}
	return e.Update(ctx, m, set, queries...)
}

func (d *SQLDriver) Upsert(ctx context.Context, conn Conn, records []*schema.Entity, opts OperateOptions) (int64, error) {
	e, err := d.executor(conn, opts)
	if err != nil {
		return 0, err
	}
	return e.Upsert(ctx, records)
}

// Search returns a deferred selector. A bad transaction handle surfaces
// when the selector is consumed.
func (d *SQLDriver) Search(conn Conn, opts OperateOptions, props ...schema.Columns) *selector.Selector {
	e, err := d.executor(conn, opts)
	if err != nil {
		return selector.New(func(context.Context, *selector.Selector) ([]*schema.Entity, error) {
			return nil, err
		}, props...)
	}
	return e.Search(props...)
}

// SQLConn is a Conn backed by a client.
type SQLConn struct {
	*client.Client
}

// Use returns the client for a nil handle and the transaction for a
// *client.Tx.
func (c *SQLConn) Use(handle any) (executor.Execer, error) {
	switch h := handle.(type) {
	case nil:
		return c.Client, nil
	case *client.Tx:
		return h, nil
	default:
		return nil, runtime.NewUsageError("transaction", "unsupported transaction handle %T", handle)
	}
}

// Transaction runs fn in a client transaction; the handle is a *client.Tx.
func (c *SQLConn) Transaction(ctx context.Context, opts TxOptions, fn func(handle any) error) error {
	return c.Client.TransactionWithOptions(ctx, client.NewTxOptions(opts.Isolation, opts.ReadOnly), func(tx *client.Tx) error {
		return fn(tx)
	})
}
