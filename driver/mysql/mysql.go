// Package mysql implements the MySQL driver. Importing it registers
// "magicorm/driver-mysql".
package mysql

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-version"

	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/internal/debug"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/runtime/client"
)

// Name is the backend identifier.
const Name = "mysql"

// MySQL error numbers translated by this driver.
const (
	errDupEntry   = 1062
	errBadDB      = 1049
	minServerVers = "5.7.0"
)

var (
	dupEntryRe  = regexp.MustCompile(`Duplicate entry '(.*)' for key '(.+)'`)
	badDBRe     = regexp.MustCompile(`Unknown database '(.+)'`)
	minVersion  = version.Must(version.NewVersion(minServerVers))
	versionPart = regexp.MustCompile(`^\d+(\.\d+)*`)
)

func init() {
	if err := driver.Register(driver.Namespace+"/driver-"+Name, New); err != nil {
		panic(err)
	}
}

// New creates a MySQL driver.
func New(opts driver.Options) (driver.Driver, error) {
	return driver.NewSQLDriver(driver.SQLConfig{
		Name:      Name,
		SQLDriver: "mysql",
		Dialect:   sqlgen.MySQLDialect{},
		DSN:       DSN,
		Translate: Translate,
		OnConnect: checkVersion,
	}, opts), nil
}

// DSN builds a go-sql-driver data source name. An explicit DSN is parsed
// so that parseTime is always on.
func DSN(opts driver.Options) (string, error) {
	var cfg *gomysql.Config
	if opts.DSN != "" {
		parsed, err := gomysql.ParseDSN(opts.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg = parsed
	} else {
		cfg = gomysql.NewConfig()
		cfg.User = opts.User
		cfg.Passwd = opts.Password
		cfg.DBName = opts.Database
		host := opts.Host
		if host == "" {
			host = "127.0.0.1"
		}
		port := opts.Port
		if port == 0 {
			port = 3306
		}
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	cfg.ParseTime = true
	cfg.MultiStatements = false
	for k, v := range opts.Params {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[k] = v
	}
	return cfg.FormatDSN(), nil
}

// Translate maps MySQL errors onto runtime errors.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			if m := dupEntryRe.FindStringSubmatch(me.Message); m != nil {
				return &runtime.DuplicateKeyError{Key: m[2], Value: m[1], Cause: err}
			}
			return &runtime.DuplicateKeyError{Cause: err}
		case errBadDB:
			if m := badDBRe.FindStringSubmatch(me.Message); m != nil {
				return &runtime.UnknownDatabaseError{Database: m[1]}
			}
		}
		return err
	}

	if errors.Is(err, gomysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, sqldriver.ErrBadConn) {
		return fmt.Errorf("%w: %v", runtime.ErrUnconnected, err)
	}
	return err
}

func checkVersion(ctx context.Context, c *client.Client) error {
	rows, err := c.Query(ctx, "select version() as v;")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	raw, _ := rows[0]["v"].(string)
	v, err := serverVersion(raw)
	if err != nil {
		debug.Warn("cannot parse mysql server version", "version", raw, "error", err)
		return nil
	}
	if v.LessThan(minVersion) {
		debug.Warn("mysql server is older than supported", "version", v.String(), "minimum", minServerVers)
	}
	return nil
}

// serverVersion extracts the numeric part of a version() string such as
// "8.0.34-0ubuntu0.22.04.1" or "10.6.12-MariaDB".
func serverVersion(raw string) (*version.Version, error) {
	num := versionPart.FindString(strings.TrimSpace(raw))
	if num == "" {
		return nil, fmt.Errorf("no version number in %q", raw)
	}
	return version.NewVersion(num)
}
