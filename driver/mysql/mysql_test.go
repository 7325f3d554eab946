package mysql

import (
	"database/sql"
	sqldriver "database/sql/driver"
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/runtime"
)

func TestRegistered(t *testing.T) {
	d, err := driver.Create("mysql", driver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
	assert.Equal(t, "mysql", d.Dialect().Name())
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		opts driver.Options
		want string
	}{
		{
			name: "fields",
			opts: driver.Options{User: "root", Password: "pw", Host: "db", Port: 3307, Database: "app"},
			want: "root:pw@tcp(db:3307)/app?parseTime=true",
		},
		{
			name: "defaults",
			opts: driver.Options{User: "root", Database: "app"},
			want: "root@tcp(127.0.0.1:3306)/app?parseTime=true",
		},
		{
			name: "explicit dsn",
			opts: driver.Options{DSN: "u:p@tcp(h:1)/d"},
			want: "u:p@tcp(h:1)/d?parseTime=true",
		},
		{
			name: "params",
			opts: driver.Options{User: "u", Database: "d", Params: map[string]string{"charset": "utf8mb4"}},
			want: "u@tcp(127.0.0.1:3306)/d?parseTime=true&charset=utf8mb4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DSN(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DSN(driver.Options{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))

	dup := &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'user.PRIMARY'"}
	err := Translate(dup)
	assert.True(t, runtime.IsDuplicateKey(err))
	var dk *runtime.DuplicateKeyError
	require.ErrorAs(t, err, &dk)
	assert.Equal(t, "user.PRIMARY", dk.Key)
	assert.Equal(t, "7", dk.Value)

	err = Translate(&gomysql.MySQLError{Number: 1049, Message: "Unknown database 'nope'"})
	var ud *runtime.UnknownDatabaseError
	require.ErrorAs(t, err, &ud)
	assert.Equal(t, "nope", ud.Database)
	assert.ErrorIs(t, err, runtime.ErrUnknownDatabase)

	for _, cause := range []error{gomysql.ErrInvalidConn, sql.ErrConnDone, sqldriver.ErrBadConn} {
		assert.True(t, runtime.IsUnconnected(Translate(cause)), cause.Error())
	}

	other := errors.New("other")
	assert.Same(t, other, Translate(other))
	syntax := &gomysql.MySQLError{Number: 1064, Message: "syntax"}
	assert.Same(t, syntax, Translate(syntax))
}

func TestServerVersion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		old  bool
	}{
		{"8.0.34-0ubuntu0.22.04.1", "8.0.34", false},
		{"10.6.12-MariaDB-1:10.6.12+maria~ubu2004", "10.6.12", false},
		{"5.6.51-log", "5.6.51", true},
	}
	for _, tt := range tests {
		v, err := serverVersion(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.String())
		assert.Equal(t, tt.old, v.LessThan(minVersion))
	}

	_, err := serverVersion("unknown")
	assert.Error(t, err)
}
