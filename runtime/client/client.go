// Package client provides the single-connection database client used by
// magicorm drivers.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/satishbabariya/magicorm/runtime"
)

// Translator converts backend-native errors into magicorm errors.
// It is only called with non-nil errors.
type Translator func(error) error

// Client is one logical database connection. Statements are issued on a
// single pinned *sql.Conn, so they run in the order they are called.
type Client struct {
	db         *sql.DB
	driverName string
	translate  Translator

	mu          sync.RWMutex
	conn        *sql.Conn
	middlewares []Middleware
}

// Open opens dsn with the named database/sql driver and pins one connection.
func Open(ctx context.Context, driverName, dsn string, translate Translator) (*Client, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	c, err := FromDB(ctx, driverName, db, translate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// FromDB creates a client from an existing pool. The client takes ownership
// of db and closes it on Close.
func FromDB(ctx context.Context, driverName string, db *sql.DB, translate Translator) (*Client, error) {
	if translate == nil {
		translate = func(err error) error { return err }
	}
	db.SetMaxOpenConns(1)

	c := &Client{db: db, driverName: driverName, translate: translate}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, c.translate(err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, c.translate(err)
	}
	c.conn = conn
	return c, nil
}

// DriverName returns the database/sql driver name.
func (c *Client) DriverName() string {
	return c.driverName
}

// Exec executes a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := c.acquire()
	if err != nil {
		return nil, err
	}
	return c.exec(ctx, conn, query, args)
}

// Query executes a statement and returns its rows.
func (c *Client) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	conn, err := c.acquire()
	if err != nil {
		return nil, err
	}
	return c.query(ctx, conn, query, args)
}

// Close releases the connection. Any later use returns runtime.ErrUnconnected.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return runtime.ErrUnconnected
	}
	connErr := c.conn.Close()
	dbErr := c.db.Close()
	c.conn = nil
	if connErr != nil {
		return c.translate(connErr)
	}
	if dbErr != nil {
		return c.translate(dbErr)
	}
	return nil
}

func (c *Client) acquire() (*sql.Conn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil, runtime.ErrUnconnected
	}
	return c.conn, nil
}

// querier is the part of *sql.Conn and *sql.Tx used to run statements.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (c *Client) exec(ctx context.Context, q querier, query string, args []any) (sql.Result, error) {
	var res sql.Result
	err := c.run(ctx, query, args, func() error {
		var err error
		res, err = q.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, c.translate(err)
	}
	return res, nil
}

func (c *Client) query(ctx context.Context, q querier, query string, args []any) ([]map[string]any, error) {
	var out []map[string]any
	err := c.run(ctx, query, args, func() error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = ScanMaps(rows)
		return err
	})
	if err != nil {
		return nil, c.translate(err)
	}
	return out, nil
}
