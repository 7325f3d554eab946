package client

import (
	"context"
	"database/sql"
	"fmt"
)

// IsolationLevel selects the isolation of a transaction.
type IsolationLevel int

const (
	// LevelDefault leaves the isolation to the backend. It is the zero value.
	LevelDefault IsolationLevel = iota
	ReadUncommitted
	ReadCommitted
	RepeatableRead
	Serializable
)

// ToSQLIsolationLevel converts the level for database/sql. Unknown levels
// map to sql.LevelDefault.
func (level IsolationLevel) ToSQLIsolationLevel() sql.IsolationLevel {
	switch level {
	case ReadUncommitted:
		return sql.LevelReadUncommitted
	case ReadCommitted:
		return sql.LevelReadCommitted
	case RepeatableRead:
		return sql.LevelRepeatableRead
	case Serializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

// NewTxOptions builds the options passed to Begin. It returns nil when
// both settings are the backend defaults.
func NewTxOptions(isolation IsolationLevel, readOnly bool) *sql.TxOptions {
	if isolation == LevelDefault && !readOnly {
		return nil
	}
	return &sql.TxOptions{
		Isolation: isolation.ToSQLIsolationLevel(),
		ReadOnly:  readOnly,
	}
}

// Tx is a transaction on the client connection. It is the opaque handle
// passed through operation options; it runs statements like the client.
type Tx struct {
	tx     *sql.Tx
	client *Client
	depth  int
	done   bool
}

// TransactionFunc is a function that runs within a transaction
type TransactionFunc func(tx *Tx) error

// Begin starts a transaction on the pinned connection. Nil opts use the
// backend defaults.
func (c *Client) Begin(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	conn, err := c.acquire()
	if err != nil {
		return nil, err
	}
	sqlTx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", c.translate(err))
	}
	return &Tx{tx: sqlTx, client: c}, nil
}

// Transaction runs fn in a transaction. The transaction is rolled back
// when fn returns an error or panics, and committed otherwise.
func (c *Client) Transaction(ctx context.Context, fn TransactionFunc) error {
	return c.TransactionWithOptions(ctx, nil, fn)
}

// TransactionWithOptions executes a transaction with custom options
func (c *Client) TransactionWithOptions(ctx context.Context, opts *sql.TxOptions, fn TransactionFunc) error {
	tx, err := c.Begin(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Exec executes a statement inside the transaction.
func (tx *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.client.exec(ctx, tx.tx, query, args)
}

// Query executes a statement inside the transaction and returns its rows.
func (tx *Tx) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	return tx.client.query(ctx, tx.tx, query, args)
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	if err := tx.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", tx.client.translate(err))
	}
	tx.done = true
	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (tx *Tx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if err := tx.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return tx.client.translate(err)
	}
	return nil
}

// Nested runs fn inside a savepoint of tx. An error from fn rolls back to
// the savepoint only.
func (tx *Tx) Nested(ctx context.Context, fn TransactionFunc) error {
	tx.depth++
	savepoint := fmt.Sprintf("sp_%d", tx.depth)
	defer func() { tx.depth-- }()

	if _, err := tx.Exec(ctx, "savepoint "+savepoint); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = tx.Exec(ctx, "rollback to savepoint "+savepoint)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if _, rbErr := tx.Exec(ctx, "rollback to savepoint "+savepoint); rbErr != nil {
			return fmt.Errorf("nested transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if _, err := tx.Exec(ctx, "release savepoint "+savepoint); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}
