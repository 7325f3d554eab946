package engine_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/spf13/cast"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/satishbabariya/magicorm/driver"
	_ "github.com/satishbabariya/magicorm/driver/mysql"
	_ "github.com/satishbabariya/magicorm/driver/postgres"
	_ "github.com/satishbabariya/magicorm/driver/sqlite"
	"github.com/satishbabariya/magicorm/engine"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

// backend is one database the suite runs against.
type backend struct {
	Driver string
	EnvVar string
	// FollowsExplicitKeys is false where the key sequence ignores
	// explicitly inserted keys.
	FollowsExplicitKeys bool
}

var backends = []backend{
	{Driver: "sqlite", FollowsExplicitKeys: true},
	{Driver: "mysql", EnvVar: "MYSQL_TEST_URL", FollowsExplicitKeys: true},
	{Driver: "postgres", EnvVar: "POSTGRES_TEST_URL"},
}

// E2ESuite runs the engine against a real backend.
type E2ESuite struct {
	suite.Suite
	backend backend
	dsn     string
	engine  *engine.Engine
	account *schema.Model
}

func (s *E2ESuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.account = schema.MustModel("e2e_account",
		schema.F("id", schema.Prop("int").Primary().Autoinc()),
		schema.F("email", schema.Prop("varchar(64)").Unique().NotNull()),
		schema.F("name", schema.Prop("string")),
		schema.F("age", schema.Prop("int").Default(18)),
		schema.F("score", schema.Prop("double")),
	)

	e, err := engine.New(engine.Options{
		Driver:        s.backend.Driver,
		DriverOptions: driver.Options{DSN: s.dsn},
		M2DDL:         engine.M2DDLDropCreate,
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), e.Register(s.account))
	require.NoError(s.T(), e.Connect(ctx))
	s.engine = e
}

func (s *E2ESuite) SetupTest() {
	_, err := s.engine.Delete(context.Background(), s.account, filter.Where("id", filter.Ne(nil)))
	require.NoError(s.T(), err)
}

func (s *E2ESuite) TearDownSuite() {
	if s.engine != nil {
		_ = s.engine.Close(context.Background())
	}
}

func (s *E2ESuite) accounts(emails ...string) []*schema.Entity {
	out := make([]*schema.Entity, len(emails))
	for i, email := range emails {
		out[i] = s.account.New(map[string]any{"email": email})
	}
	return out
}

func (s *E2ESuite) emails(rows []*schema.Entity) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		v, _ := r.Get("email")
		out[i] = cast.ToString(v)
	}
	return out
}

func (s *E2ESuite) TestInsertFillsKeys() {
	ctx := context.Background()
	recs, err := s.engine.Insert(ctx, s.accounts("a", "b", "c")...)
	s.Require().NoError(err)

	seen := map[int64]bool{}
	for _, r := range recs {
		id, ok := r.Get("id")
		s.Require().True(ok)
		seen[cast.ToInt64(id)] = true
		age, _ := r.Get("age")
		s.Nil(age, "defaults are not read back")
	}
	s.Len(seen, 3)

	rows, err := s.engine.Search(s.account.Columns()).All(ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b", "c"}, s.emails(rows))
	age, _ := rows[0].Get("age")
	s.Equal(int64(18), age)
}

func (s *E2ESuite) TestInsertMixedKeys() {
	if !s.backend.FollowsExplicitKeys {
		s.T().Skip("key sequence does not follow explicit keys")
	}
	ctx := context.Background()
	first, err := s.engine.Insert(ctx, s.accounts("g1", "g2", "g3", "g4", "g5")...)
	s.Require().NoError(err)
	base, _ := first[4].Get("id")
	top := cast.ToInt64(base)

	recs := s.accounts("x1", "x2", "x3", "x4", "x5")
	recs[0].Set("id", top+2)
	recs[2].Set("id", top+95)
	recs, err = s.engine.Insert(ctx, recs...)
	s.Require().NoError(err)

	got := make([]int64, len(recs))
	for i, r := range recs {
		v, _ := r.Get("id")
		got[i] = cast.ToInt64(v)
	}
	s.Equal([]int64{top + 2, top + 3, top + 95, top + 96, top + 97}, got)
}

func (s *E2ESuite) TestDeleteAndUpdateCounts() {
	ctx := context.Background()
	recs, err := s.engine.Insert(ctx, s.accounts("a", "b", "c", "d")...)
	s.Require().NoError(err)
	firstID, _ := recs[0].Get("id")

	n, err := s.engine.Update(ctx, s.account, map[string]any{"age": 40}, filter.Where("email", filter.Like("%")), filter.Where("id", firstID))
	s.Require().NoError(err)
	s.Equal(int64(4), n)

	n, err = s.engine.Delete(ctx, s.account, filter.Where("id", firstID))
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.engine.Delete(ctx, s.account, filter.Where("email", filter.Not(filter.Eq("d"))))
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = s.engine.Delete(ctx, s.account)
	s.ErrorIs(err, runtime.ErrEmptyFilter)
}

func (s *E2ESuite) TestSearchOperators() {
	ctx := context.Background()
	recs := []*schema.Entity{
		s.account.New(map[string]any{"email": "alice@x", "name": "alice", "age": 31, "score": 1.5}),
		s.account.New(map[string]any{"email": "alan@x", "name": "alan", "age": 17}),
		s.account.New(map[string]any{"email": "bob@x", "age": 45, "score": 9.0}),
	}
	_, err := s.engine.Insert(ctx, recs...)
	s.Require().NoError(err)

	tests := []struct {
		name  string
		query filter.Query
		want  []string
	}{
		{"eq", filter.Where("name", "alan"), []string{"alan@x"}},
		{"null", filter.Where("name", nil), []string{"bob@x"}},
		{"not null", filter.Where("score", filter.Ne(nil)), []string{"alice@x", "bob@x"}},
		{"range", filter.Where("age", filter.Ops{filter.OpGte: 18, filter.OpLt: 45}), []string{"alice@x"}},
		{"like", filter.Where("email", filter.Like("al%")), []string{"alice@x", "alan@x"}},
		{"regex", filter.Where("email", regexp.MustCompile("^b")), []string{"bob@x"}},
		{"not regex", filter.Where("email", filter.Not(filter.Regex("^al"))), []string{"bob@x"}},
		{"or", filter.Or(filter.Where("age", filter.Lt(18)), filter.Where("age", filter.Gt(40))), []string{"alan@x", "bob@x"}},
		{"negate", filter.Negate(filter.Where("age", filter.Gt(20))), []string{"alan@x"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rows, err := s.engine.Search(s.account.Columns()).Where(tt.query).All(ctx)
			s.Require().NoError(err)
			s.ElementsMatch(tt.want, s.emails(rows))
		})
	}

	page, err := s.engine.Search(s.account.Columns()).Limit(2).All(ctx)
	s.Require().NoError(err)
	s.Len(page, 2)
	rest, err := s.engine.Search(s.account.Columns()).Offset(2).All(ctx)
	s.Require().NoError(err)
	s.Len(rest, 1)
}

func (s *E2ESuite) TestUpsert() {
	ctx := context.Background()
	recs, err := s.engine.Insert(ctx, s.accounts("a")...)
	s.Require().NoError(err)
	id, _ := recs[0].Get("id")

	_, err = s.engine.Upsert(ctx, s.account.New(map[string]any{"id": id, "email": "a", "name": "renamed"}))
	s.Require().NoError(err)

	row, err := s.engine.Search(s.account.Columns()).Where(filter.Where("id", id)).First(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(row)
	name, _ := row.Get("name")
	s.Equal("renamed", name)
}

func (s *E2ESuite) TestDuplicateKey() {
	ctx := context.Background()
	_, err := s.engine.Insert(ctx, s.accounts("dup")...)
	s.Require().NoError(err)

	_, err = s.engine.Insert(ctx, s.accounts("dup")...)
	s.True(runtime.IsDuplicateKey(err), "got %v", err)
}

func (s *E2ESuite) TestTransaction() {
	ctx := context.Background()
	rollback := errors.New("rollback")

	err := s.engine.Transaction(ctx, func(tx *engine.Engine) error {
		if _, err := tx.Insert(ctx, s.accounts("in-tx")...); err != nil {
			return err
		}
		rows, err := tx.Search(s.account.Columns()).All(ctx)
		s.Require().NoError(err)
		s.Len(rows, 1)
		return rollback
	})
	s.ErrorIs(err, rollback)

	rows, err := s.engine.Search(s.account.Columns()).All(ctx)
	s.Require().NoError(err)
	s.Empty(rows)

	err = s.engine.Transaction(ctx, func(tx *engine.Engine) error {
		_, err := tx.Insert(ctx, s.accounts("committed")...)
		return err
	})
	s.Require().NoError(err)
	rows, err = s.engine.Search(s.account.Columns()).All(ctx)
	s.Require().NoError(err)
	s.Len(rows, 1)
}

func TestE2ESuite(t *testing.T) {
	for _, b := range backends {
		dsn := filepath.Join(t.TempDir(), "e2e.db")
		if b.EnvVar != "" {
			dsn = os.Getenv(b.EnvVar)
			if dsn == "" {
				t.Logf("Skipping %s tests: %s not provided", b.Driver, b.EnvVar)
				continue
			}
		}

		t.Run(fmt.Sprintf("E2E_%s", b.Driver), func(t *testing.T) {
			suite.Run(t, &E2ESuite{backend: b, dsn: dsn})
		})
	}
}
