package driver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/runtime/client"
	"github.com/satishbabariya/magicorm/schema"
)

var post = schema.MustModel("post",
	schema.F("id", schema.Prop("int").Primary().Autoinc()),
	schema.F("title", schema.Prop("string").NotNull()),
)

func connect(t *testing.T, cfg driver.SQLConfig) (*driver.SQLDriver, driver.Conn) {
	t.Helper()
	d := driver.NewSQLDriver(cfg, driver.Options{DSN: ":memory:"})
	conn, err := d.Connect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return d, conn
}

func sqliteConfig() driver.SQLConfig {
	return driver.SQLConfig{Name: "sqlite", SQLDriver: "sqlite3", Dialect: sqlgen.SQLiteDialect{}}
}

func TestSQLDriver(t *testing.T) {
	ctx := context.Background()
	d, conn := connect(t, sqliteConfig())
	var none driver.OperateOptions

	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, ":memory:", d.Options().DSN)
	require.NoError(t, d.CreateTable(ctx, conn, post, none))

	recs, err := d.Insert(ctx, conn, []*schema.Entity{
		post.New(map[string]any{"title": "a"}),
		post.New(map[string]any{"title": "b"}),
	}, none)
	require.NoError(t, err)
	id, _ := recs[1].Get("id")
	assert.Equal(t, int64(2), cast.ToInt64(id))

	n, err := d.Update(ctx, conn, post, map[string]any{"title": "c"}, none, filter.Where("id", 2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := d.Search(conn, none, post.Columns()).Where(filter.Where("title", "c")).All(ctx)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Same(t, post, found[0].Model())

	n, err = d.Delete(ctx, conn, post, none, filter.Where("id", filter.Lt(10)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, d.DropTable(ctx, conn, "post", none))
}

func TestSQLDriverTransaction(t *testing.T) {
	ctx := context.Background()
	d, conn := connect(t, sqliteConfig())
	require.NoError(t, d.CreateTable(ctx, conn, post, driver.OperateOptions{}))
	boom := errors.New("boom")

	err := conn.Transaction(ctx, driver.TxOptions{}, func(handle any) error {
		opts := driver.OperateOptions{Transaction: handle}
		_, err := d.Insert(ctx, conn, []*schema.Entity{post.New(map[string]any{"title": "t"})}, opts)
		require.NoError(t, err)
		rows, err := d.Search(conn, opts, post.Columns()).All(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := d.Search(conn, driver.OperateOptions{}, post.Columns()).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLDriverBadHandle(t *testing.T) {
	ctx := context.Background()
	d, conn := connect(t, sqliteConfig())
	opts := driver.OperateOptions{Transaction: "not a transaction"}

	err := d.CreateTable(ctx, conn, post, opts)
	assert.True(t, runtime.IsUsage(err))

	_, err = d.Search(conn, opts, post.Columns()).All(ctx)
	assert.True(t, runtime.IsUsage(err))
}

func TestSQLDriverConnectHooks(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()
	cfg.DSN = func(o driver.Options) (string, error) {
		if o.Database == "" {
			return "", errors.New("database is required")
		}
		return "file:" + o.Database + "?mode=memory", nil
	}

	_, err := driver.NewSQLDriver(cfg, driver.Options{}).Connect(ctx)
	assert.EqualError(t, err, "database is required")

	hookErr := errors.New("hook failed")
	cfg.OnConnect = func(ctx context.Context, c *client.Client) error {
		_, err := c.Query(ctx, "select sqlite_version() as v;")
		require.NoError(t, err)
		return hookErr
	}
	_, err = driver.NewSQLDriver(cfg, driver.Options{Database: "hooks"}).Connect(ctx)
	assert.ErrorIs(t, err, hookErr)
}

func TestSQLDriverMiddleware(t *testing.T) {
	ctx := context.Background()
	var timed, failed []string
	d := driver.NewSQLDriver(sqliteConfig(), driver.Options{
		DSN: ":memory:",
		Middleware: []client.Middleware{
			client.TimingMiddleware(func(query string, _ time.Duration) { timed = append(timed, query) }),
			client.ErrorMiddleware(func(query string, _ error) { failed = append(failed, query) }),
		},
	})
	conn, err := d.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	require.NoError(t, d.CreateTable(ctx, conn, post, driver.OperateOptions{}))
	_, err = conn.Query(ctx, "select * from missing;")
	require.Error(t, err)

	assert.Len(t, timed, 2)
	assert.Equal(t, []string{"select * from missing;"}, failed)
}

func TestSQLDriverReadOnlyTransaction(t *testing.T) {
	ctx := context.Background()
	d, conn := connect(t, sqliteConfig())
	require.NoError(t, d.CreateTable(ctx, conn, post, driver.OperateOptions{}))

	opts := driver.TxOptions{Isolation: client.Serializable, ReadOnly: true}
	err := conn.Transaction(ctx, opts, func(handle any) error {
		rows, err := d.Search(conn, driver.OperateOptions{Transaction: handle}, post.Columns()).All(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
		return nil
	})
	require.NoError(t, err)
}
