package executor

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

type fakeResult struct {
	lastID    int64
	lastIDErr error
	affected  int64
}

func (r fakeResult) LastInsertId() (int64, error) { return r.lastID, r.lastIDErr }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

type call struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls  []call
	result sql.Result
	rows   []map[string]any
	err    error
}

func (f *fakeExecer) Exec(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, call{query, args})
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExecer) Query(_ context.Context, query string, args ...any) ([]map[string]any, error) {
	f.calls = append(f.calls, call{query, args})
	return f.rows, f.err
}

var user = schema.MustModel("user",
	schema.F("id", schema.Prop("int").Primary().Autoinc()),
	schema.F("name", schema.Prop("string")),
)

func records(ids ...any) []*schema.Entity {
	out := make([]*schema.Entity, len(ids))
	for i, id := range ids {
		fields := map[string]any{"name": "n"}
		if id != nil {
			fields["id"] = id
		}
		out[i] = user.New(fields)
	}
	return out
}

func ids(t *testing.T, recs []*schema.Entity) []int64 {
	t.Helper()
	out := make([]int64, len(recs))
	for i, r := range recs {
		v, ok := r.Get("id")
		require.True(t, ok, "record %d has no id", i)
		out[i] = cast.ToInt64(v)
	}
	return out
}

func TestInsertLastInsertID(t *testing.T) {
	x := &fakeExecer{result: fakeResult{lastID: 8}}
	got, err := New(x, sqlgen.MySQLDialect{}).Insert(context.Background(), records(7, nil, 100, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 8, 100, 101, 102}, ids(t, got))
	require.Len(t, x.calls, 1)
	assert.Equal(t, "insert into `user` (`id`, `name`) values (?, ?), (?, ?), (?, ?), (?, ?), (?, ?);", x.calls[0].sql)
	assert.Len(t, x.calls[0].args, 10)
}

func TestInsertExplicitBelowRunningID(t *testing.T) {
	x := &fakeExecer{result: fakeResult{lastID: 11}}
	got, err := New(x, sqlgen.MySQLDialect{}).Insert(context.Background(), records(nil, 7, nil, 20, nil))
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 7, 12, 20, 21}, ids(t, got))
}

func TestInsertAllExplicit(t *testing.T) {
	x := &fakeExecer{result: fakeResult{lastIDErr: errors.New("not supported")}}
	got, err := New(x, sqlgen.MySQLDialect{}).Insert(context.Background(), records(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, got))
}

func TestInsertEmpty(t *testing.T) {
	x := &fakeExecer{}
	got, err := New(x, sqlgen.MySQLDialect{}).Insert(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, x.calls)
}

func TestInsertReturning(t *testing.T) {
	x := &fakeExecer{rows: []map[string]any{
		{"id": int64(101)}, {"id": int64(7)}, {"id": int64(8)}, {"id": "102"}, {"id": int64(100)},
	}}
	got, err := New(x, sqlgen.SQLiteDialect{}).Insert(context.Background(), records(7, nil, 100, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 8, 100, 101, 102}, ids(t, got))
	require.Len(t, x.calls, 1)
	assert.Contains(t, x.calls[0].sql, `returning "id";`)
}

func TestInsertReturningMismatch(t *testing.T) {
	x := &fakeExecer{rows: []map[string]any{{"id": int64(1)}}}
	_, err := New(x, sqlgen.PostgresDialect{}).Insert(context.Background(), records(nil, nil))
	assert.ErrorIs(t, err, runtime.ErrKeyMismatch)

	x = &fakeExecer{rows: []map[string]any{{"id": int64(1)}, {"id": int64(2)}}}
	_, err = New(x, sqlgen.PostgresDialect{}).Insert(context.Background(), records(5, nil))
	assert.ErrorIs(t, err, runtime.ErrKeyMismatch)
}

func TestInsertWithoutAutoinc(t *testing.T) {
	tag := schema.MustModel("tag", schema.F("name", schema.Prop("string").Primary()))
	x := &fakeExecer{result: fakeResult{}}
	recs := []*schema.Entity{tag.New(map[string]any{"name": "go"})}

	got, err := New(x, sqlgen.PostgresDialect{}).Insert(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
	require.Len(t, x.calls, 1)
	assert.Equal(t, `insert into "tag" ("name") values ($1);`, x.calls[0].sql)
}

func TestInsertErrors(t *testing.T) {
	x := &fakeExecer{}
	_, err := New(x, sqlgen.MySQLDialect{}).Insert(context.Background(), records("seven"))
	assert.True(t, runtime.IsUsage(err))
	assert.Empty(t, x.calls)

	boom := errors.New("boom")
	x = &fakeExecer{err: boom}
	_, err = New(x, sqlgen.MySQLDialect{}).Insert(context.Background(), records(nil))
	assert.ErrorIs(t, err, boom)
}

func TestSearch(t *testing.T) {
	x := &fakeExecer{rows: []map[string]any{
		{"id": int64(1), "name": []byte("a")},
		{"id": "2", "name": "b"},
	}}
	s := New(x, sqlgen.MySQLDialect{}).Search(user.Columns()).
		Where(filter.Where("id", filter.Lt(5))).
		Offset(1)
	assert.Empty(t, x.calls)

	got, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, user, got[0].Model())
	name, _ := got[0].Get("name")
	assert.Equal(t, "a", name)
	id, _ := got[1].Get("id")
	assert.Equal(t, int64(2), id)

	require.Len(t, x.calls, 1)
	assert.Equal(t, "select * from `user` where `id` < ? limit 18446744073709551615 offset 1;", x.calls[0].sql)
	assert.Equal(t, []any{5}, x.calls[0].args)

	_, err = s.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, x.calls, 1)
}

func TestSearchPick(t *testing.T) {
	x := &fakeExecer{}
	_, err := New(x, sqlgen.MySQLDialect{}).Search(user.Pick("name"), user.Pick("id")).
		Where(filter.Where("name", "a"), filter.Where("name", "b")).
		Limit(2).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, x.calls, 1)
	assert.Equal(t, "select * from `user` where (`name` = ? or `name` = ?) limit 2;", x.calls[0].sql)
}

func TestDelete(t *testing.T) {
	x := &fakeExecer{result: fakeResult{affected: 3}}
	e := New(x, sqlgen.MySQLDialect{})

	n, err := e.Delete(context.Background(), user, filter.Where("id", filter.Lt(5)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "delete from `user` where `id` < ?;", x.calls[0].sql)

	_, err = e.Delete(context.Background(), user)
	assert.ErrorIs(t, err, runtime.ErrEmptyFilter)
	assert.Len(t, x.calls, 1)
}

func TestUpdate(t *testing.T) {
	x := &fakeExecer{result: fakeResult{affected: 1}}
	n, err := New(x, sqlgen.MySQLDialect{}).Update(context.Background(), user,
		map[string]any{"name": "z"}, filter.Where("id", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "update `user` set `name` = ? where `id` = ?;", x.calls[0].sql)
	assert.Equal(t, []any{"z", 1}, x.calls[0].args)
}

func TestUpsert(t *testing.T) {
	x := &fakeExecer{result: fakeResult{affected: 2}}
	e := New(x, sqlgen.MySQLDialect{})

	n, err := e.Upsert(context.Background(), records(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Contains(t, x.calls[0].sql, "on duplicate key update `name` = values(`name`)")

	n, err = e.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, x.calls, 1)
}

func TestCreateDropTable(t *testing.T) {
	x := &fakeExecer{result: fakeResult{}}
	e := New(x, sqlgen.MySQLDialect{})

	require.NoError(t, e.CreateTable(context.Background(), user))
	require.NoError(t, e.DropTable(context.Background(), "user"))
	require.Len(t, x.calls, 2)
	assert.Equal(t, "create table `user` (`id` int auto_increment, constraint user_pk primary key (id), `name` varchar(255));", x.calls[0].sql)
	assert.Equal(t, "drop table `user`;", x.calls[1].sql)

	twoKeys := schema.MustModel("t",
		schema.F("a", schema.Prop("int").Primary()),
		schema.F("b", schema.Prop("int").Primary()),
	)
	err := e.CreateTable(context.Background(), twoKeys)
	assert.True(t, runtime.IsSchema(err))
	assert.Len(t, x.calls, 2)
}

func TestWithDuplicateValue(t *testing.T) {
	one := []*schema.Entity{user.New(map[string]any{"name": "ann"})}
	two := append(one, user.New(map[string]any{"name": "bo"}))

	tests := []struct {
		name    string
		err     *runtime.DuplicateKeyError
		records []*schema.Entity
		want    any
	}{
		{name: "single record", err: &runtime.DuplicateKeyError{Key: "user.name"}, records: one, want: "ann"},
		{name: "bare column", err: &runtime.DuplicateKeyError{Key: "name"}, records: one, want: "ann"},
		{name: "value kept", err: &runtime.DuplicateKeyError{Key: "user.name", Value: "x"}, records: one, want: "x"},
		{name: "batch", err: &runtime.DuplicateKeyError{Key: "user.name"}, records: two, want: nil},
		{name: "composite key", err: &runtime.DuplicateKeyError{Key: "user.name, user.age"}, records: one, want: nil},
		{name: "unknown column", err: &runtime.DuplicateKeyError{Key: "user_name_key"}, records: one, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := withDuplicateValue(tt.err, tt.records)
			assert.Same(t, tt.err, err)
			assert.Equal(t, tt.want, tt.err.Value)
		})
	}

	plain := errors.New("boom")
	assert.Same(t, plain, withDuplicateValue(plain, one))
}
