package filter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	q := Where("name", "user", "age", Gte(18))
	assert.Equal(t, Query{{"name", "user"}, {"age", Ops{OpGte: 18}}}, q)

	v, ok := q.Get("age")
	assert.True(t, ok)
	assert.Equal(t, Ops{OpGte: 18}, v)

	_, ok = q.Get("missing")
	assert.False(t, ok)

	assert.Panics(t, func() { Where("name") })
	assert.Panics(t, func() { Where(1, 2) })
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, Ops{OpEq: "user"}, NormalizeValue("user"))
	assert.Equal(t, Ops{OpEq: nil}, NormalizeValue(nil))
	assert.Equal(t, Ops{OpRegex: "^a.*"}, NormalizeValue(regexp.MustCompile("^a.*")))
	assert.Equal(t, Ops{OpLt: 3}, NormalizeValue(Lt(3)))
	assert.Equal(t, Ops{OpLt: 3}, NormalizeValue(map[string]any{OpLt: 3}))
	assert.True(t, IsUndefined(NormalizeValue(Undefined)))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Query{}, Resolve())

	single := Resolve(Query{{"name", "user"}, {"$and", []Query{{{"a", 1}}}}})
	assert.Equal(t, Query{
		{"name", Ops{OpEq: "user"}},
		{"$and", []Query{{{"a", 1}}}},
	}, single)

	multi := Resolve(Query{{"a", 1}}, Query{{"b", 2}})
	assert.Equal(t, Query{{KeyOr, []Query{
		{{"a", Ops{OpEq: 1}}},
		{{"b", Ops{OpEq: 2}}},
	}}}, multi)
}

func TestResolveDoesNotMutate(t *testing.T) {
	in := Query{{"name", "user"}}
	Resolve(in)
	assert.Equal(t, "user", in[0].Value)
}

func TestCombinators(t *testing.T) {
	q := Or(Where("a", 1), Where("b", 2))
	require.Len(t, q, 1)
	assert.Equal(t, KeyOr, q[0].Key)
	assert.Len(t, q[0].Value, 2)

	assert.Equal(t, KeyAnd, And(Where("a", 1))[0].Key)
	assert.Equal(t, Query{{KeyNot, Where("a", 1)}}, Negate(Where("a", 1)))
	assert.Equal(t, Ops{OpNot: Ops{OpLike: "%a"}}, Not(Like("%a")))
}

func TestParseJSON(t *testing.T) {
	q, err := ParseJSON([]byte(`{
		"name": "user",
		"age": {"$gte": 18, "$not": {"$eq": 30}},
		"deleted": null,
		"score": 1.5,
		"$or": [{"a": 1}, {"b": true}],
		"$not": {"c": "x"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, Query{
		{"name", "user"},
		{"age", Ops{"$gte": int64(18), "$not": Ops{"$eq": int64(30)}}},
		{"deleted", nil},
		{"score", 1.5},
		{"$or", []Query{{{"a", int64(1)}}, {{"b", true}}}},
		{"$not", Query{{"c", "x"}}},
	}, q)
}

func TestParseJSONErrors(t *testing.T) {
	for _, src := range []string{`[1]`, `"x"`, `{"a": 1} {}`, `{"a": `} {
		_, err := ParseJSON([]byte(src))
		assert.Error(t, err, src)
	}

	q, err := ParseJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, q.IsEmpty())
}
