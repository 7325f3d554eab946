// Package filter provides the query expression tree used by searches,
// deletes and updates.
//
// A Query is an ordered list of fields. Column fields hold either a bare value
// (shorthand for {$eq: value}) or an operator clause (Ops). The combinators
// $and and $or hold a list of queries and $not holds a single query:
//
//	filter.Query{
//		{"name", "user"},
//		{"age", filter.Ops{"$gte": 18, "$lt": 65}},
//		{"$or", []filter.Query{{{"role", "admin"}}, {{"role", "owner"}}}},
//	}
package filter

import (
	"fmt"
	"regexp"
)

// Operator and combinator keys.
const (
	OpEq    = "$eq"
	OpNe    = "$ne"
	OpGt    = "$gt"
	OpGte   = "$gte"
	OpLt    = "$lt"
	OpLte   = "$lte"
	OpLike  = "$like"
	OpRegex = "$regex"
	OpNot   = "$not"

	KeyAnd = "$and"
	KeyOr  = "$or"
	KeyNot = "$not"
)

// Operators lists comparison operators in the order they are compiled.
var Operators = []string{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpRegex, OpLike}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks an absent value. Fields and operators holding it are skipped.
// A nil value is a SQL null, not an absent one.
var Undefined any = undefined{}

// IsUndefined reports whether v is the absent marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Field is one key of a query.
type Field struct {
	Key   string
	Value any
}

// Query is an ordered filter expression. Its fields are AND-combined.
type Query []Field

// Ops is an operator clause for one column. Operators are always compiled in
// the order of Operators, so map ordering does not matter.
type Ops map[string]any

// Where builds a query from alternating keys and values. It panics when a key
// is not a string or a value is missing.
func Where(kv ...any) Query {
	if len(kv)%2 != 0 {
		panic("filter.Where: odd number of arguments")
	}
	q := make(Query, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("filter.Where: key %v is not a string", kv[i]))
		}
		q = append(q, Field{Key: key, Value: kv[i+1]})
	}
	return q
}

// Get returns the value of the first field named key.
func (q Query) Get(key string) (any, bool) {
	for _, f := range q {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// IsEmpty reports whether q has no fields.
func (q Query) IsEmpty() bool {
	return len(q) == 0
}

func Eq(v any) Ops    { return Ops{OpEq: v} }
func Ne(v any) Ops    { return Ops{OpNe: v} }
func Gt(v any) Ops    { return Ops{OpGt: v} }
func Gte(v any) Ops   { return Ops{OpGte: v} }
func Lt(v any) Ops    { return Ops{OpLt: v} }
func Lte(v any) Ops   { return Ops{OpLte: v} }
func Like(v any) Ops  { return Ops{OpLike: v} }
func Regex(v any) Ops { return Ops{OpRegex: v} }

// Not negates an operator clause on the same column.
func Not(o Ops) Ops { return Ops{OpNot: o} }

// And combines queries with AND.
func And(qs ...Query) Query { return Query{{Key: KeyAnd, Value: qs}} }

// Or combines queries with OR.
func Or(qs ...Query) Query { return Query{{Key: KeyOr, Value: qs}} }

// Negate wraps a whole query in a boolean negation.
func Negate(q Query) Query { return Query{{Key: KeyNot, Value: q}} }

// NormalizeValue turns a column value into an operator clause: bare values
// become {$eq: v} and regular expressions become {$regex: source}.
// Operator clauses and Undefined are returned unchanged.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case undefined:
		return v
	case Ops:
		return x
	case map[string]any:
		return Ops(x)
	case *regexp.Regexp:
		return Ops{OpRegex: x.String()}
	default:
		return Ops{OpEq: v}
	}
}

// Normalize returns a copy of q with every column value normalized.
// Combinator fields are copied as-is.
func Normalize(q Query) Query {
	out := make(Query, 0, len(q))
	for _, f := range q {
		if isCombinator(f.Key) {
			out = append(out, f)
			continue
		}
		out = append(out, Field{Key: f.Key, Value: NormalizeValue(f.Value)})
	}
	return out
}

// Resolve merges the queries passed to one or more where calls: none gives
// an empty query, one is normalized, several are OR-combined.
func Resolve(queries ...Query) Query {
	switch len(queries) {
	case 0:
		return Query{}
	case 1:
		return Normalize(queries[0])
	default:
		children := make([]Query, len(queries))
		for i, q := range queries {
			children[i] = Normalize(q)
		}
		return Query{{Key: KeyOr, Value: children}}
	}
}

func isCombinator(key string) bool {
	return key == KeyAnd || key == KeyOr || key == KeyNot
}
