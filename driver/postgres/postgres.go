// Package postgres implements the PostgreSQL driver on lib/pq. Importing it
// registers "magicorm/driver-postgres".
package postgres

import (
	"database/sql"
	sqldriver "database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/lib/pq"

	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
)

// Name is the backend identifier.
const Name = "postgres"

const (
	uniqueViolation = pq.ErrorCode("23505")
	invalidCatalog  = pq.ErrorCode("3D000")
)

var (
	keyDetailRe = regexp.MustCompile(`Key \((.+)\)=\((.*)\) already exists`)
	badDBRe     = regexp.MustCompile(`database "(.+)" does not exist`)
)

func init() {
	if err := driver.Register(driver.Namespace+"/driver-"+Name, New); err != nil {
		panic(err)
	}
}

// New creates a PostgreSQL driver.
func New(opts driver.Options) (driver.Driver, error) {
	return driver.NewSQLDriver(driver.SQLConfig{
		Name:      Name,
		SQLDriver: "postgres",
		Dialect:   sqlgen.PostgresDialect{},
		DSN:       DSN,
		Translate: Translate,
	}, opts), nil
}

// DSN returns opts.DSN or a postgres:// URL built from the other fields.
// sslmode defaults to disable.
func DSN(opts driver.Options) (string, error) {
	if opts.DSN != "" {
		return opts.DSN, nil
	}

	host := opts.Host
	if host == "" {
		host = "localhost"
	}
	port := opts.Port
	if port == 0 {
		port = 5432
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   host + ":" + strconv.Itoa(port),
		Path:   "/" + opts.Database,
	}
	if opts.User != "" {
		if opts.Password != "" {
			u.User = url.UserPassword(opts.User, opts.Password)
		} else {
			u.User = url.User(opts.User)
		}
	}

	q := url.Values{}
	for k, v := range opts.Params {
		q.Set(k, v)
	}
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Translate maps PostgreSQL errors onto runtime errors.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		switch pe.Code {
		case uniqueViolation:
			if m := keyDetailRe.FindStringSubmatch(pe.Detail); m != nil {
				return &runtime.DuplicateKeyError{Key: m[1], Value: m[2], Cause: err}
			}
			return &runtime.DuplicateKeyError{Key: pe.Constraint, Cause: err}
		case invalidCatalog:
			if m := badDBRe.FindStringSubmatch(pe.Message); m != nil {
				return &runtime.UnknownDatabaseError{Database: m[1]}
			}
		}
		return err
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sqldriver.ErrBadConn) {
		return fmt.Errorf("%w: %v", runtime.ErrUnconnected, err)
	}
	return err
}
