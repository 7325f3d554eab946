package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type jsonKind int

const (
	kindQuery jsonKind = iota
	kindOps
	kindPlain
)

// ParseJSON decodes a JSON object into a Query, keeping key order. Objects
// under a column become operator clauses; arrays under $and/$or become lists
// of queries. Integral numbers decode as int64, others as float64.
func ParseJSON(data []byte) (Query, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec, kindQuery)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	q, ok := v.(Query)
	if !ok {
		return nil, fmt.Errorf("parse filter: expected a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse filter: unexpected data after object")
	}
	return q, nil
}

func decodeJSON(dec *json.Decoder, kind jsonKind) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec, kind)
		case '[':
			return decodeArray(dec, kind)
		}
		return nil, fmt.Errorf("unexpected %v", t)
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if n, err := t.Int64(); err == nil {
				return n, nil
			}
		}
		return t.Float64()
	default:
		return t, nil
	}
}

func decodeObject(dec *json.Decoder, kind jsonKind) (any, error) {
	var (
		query Query
		ops   = Ops{}
		plain = map[string]any{}
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}

		child := kindPlain
		switch kind {
		case kindQuery:
			child = kindOps
			if key == KeyAnd || key == KeyOr || key == KeyNot {
				child = kindQuery
			}
		case kindOps:
			if key == OpNot {
				child = kindOps
			}
		}

		v, err := decodeJSON(dec, child)
		if err != nil {
			return nil, err
		}
		switch kind {
		case kindQuery:
			query = append(query, Field{Key: key, Value: v})
		case kindOps:
			ops[key] = v
		default:
			plain[key] = v
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	switch kind {
	case kindQuery:
		if query == nil {
			query = Query{}
		}
		return query, nil
	case kindOps:
		return ops, nil
	default:
		return plain, nil
	}
}

func decodeArray(dec *json.Decoder, kind jsonKind) (any, error) {
	var (
		queries []Query
		values  []any
	)
	for dec.More() {
		v, err := decodeJSON(dec, kind)
		if err != nil {
			return nil, err
		}
		if q, ok := v.(Query); ok && kind == kindQuery {
			queries = append(queries, q)
			continue
		}
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if kind == kindQuery && len(values) == 0 {
		if queries == nil {
			queries = []Query{}
		}
		return queries, nil
	}
	for _, q := range queries {
		values = append(values, q)
	}
	return values, nil
}
