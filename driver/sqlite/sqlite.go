// Package sqlite implements the SQLite driver on mattn/go-sqlite3.
// Importing it registers "magicorm/driver-sqlite" and the database/sql
// driver "sqlite3_magicorm", which provides the regexp function.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/spf13/cast"

	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
)

const (
	// Name is the backend identifier.
	Name = "sqlite"
	// SQLDriverName is the database/sql driver registered by this package.
	SQLDriverName = "sqlite3_magicorm"
)

var patterns sync.Map // string -> *regexp.Regexp

func init() {
	sql.Register(SQLDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", match, true)
		},
	})
	if err := driver.Register(driver.Namespace+"/driver-"+Name, New); err != nil {
		panic(err)
	}
}

// New creates a SQLite driver.
func New(opts driver.Options) (driver.Driver, error) {
	return driver.NewSQLDriver(driver.SQLConfig{
		Name:      Name,
		SQLDriver: SQLDriverName,
		Dialect:   sqlgen.SQLiteDialect{},
		DSN:       DSN,
		Translate: Translate,
	}, opts), nil
}

// DSN returns opts.DSN, or a file URI built from Database and Params.
// Without either the database lives in memory.
func DSN(opts driver.Options) (string, error) {
	if opts.DSN != "" {
		return opts.DSN, nil
	}
	if opts.Database == "" && len(opts.Params) == 0 {
		return ":memory:", nil
	}

	db := opts.Database
	if db == "" {
		db = ":memory:"
	}
	dsn := "file:" + db
	if len(opts.Params) > 0 {
		q := url.Values{}
		for k, v := range opts.Params {
			q.Set(k, v)
		}
		dsn += "?" + q.Encode()
	}
	return dsn, nil
}

// match implements "value REGEXP pattern", which SQLite calls as
// regexp(pattern, value). A NULL argument yields NULL, so negated matches
// skip NULL values like "not like" does.
func match(pattern, value any) (any, error) {
	if pattern == nil || value == nil {
		return nil, nil
	}
	p := cast.ToString(pattern)
	re, ok := patterns.Load(p)
	if !ok {
		compiled, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("regexp %q: %w", p, err)
		}
		re, _ = patterns.LoadOrStore(p, compiled)
	}
	return re.(*regexp.Regexp).MatchString(cast.ToString(value)), nil
}

// Translate maps SQLite errors onto runtime errors. SQLite names the
// violated column but not the value, so DuplicateKeyError.Value is left
// for the insert pipeline to fill in.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &runtime.DuplicateKeyError{Key: constraintKey(se.Error()), Cause: err}
		}
		return err
	}

	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", runtime.ErrUnconnected, err)
	}
	return err
}

// constraintKey extracts "t.c" from "UNIQUE constraint failed: t.c".
func constraintKey(msg string) string {
	_, key, ok := strings.Cut(msg, "constraint failed: ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(key)
}
