package executor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/satishbabariya/magicorm/internal/debug"
	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

// Insert writes records of one model with a single multi-row statement and
// fills generated primary keys into the records that omitted them.
// An empty batch issues nothing.
func (e *Executor) Insert(ctx context.Context, records []*schema.Entity) ([]*schema.Entity, error) {
	if len(records) == 0 {
		return records, nil
	}

	m := records[0].Model()
	q, err := sqlgen.Insert(e.dialect, m, records)
	if err != nil {
		return nil, err
	}
	debug.Debug("insert", "table", m.Name(), "records", len(records))

	pk := m.PrimaryKey()
	if pk == nil || !pk.Autoinc {
		if _, err := e.x.Exec(ctx, q.SQL, q.Args...); err != nil {
			return nil, withDuplicateValue(err, records)
		}
		return records, nil
	}

	explicit, err := explicitKeys(records, pk.Name)
	if err != nil {
		return nil, err
	}

	if e.dialect.Returning() {
		rows, err := e.x.Query(ctx, q.SQL, q.Args...)
		if err != nil {
			return nil, withDuplicateValue(err, records)
		}
		keys := make([]int64, 0, len(rows))
		for _, row := range rows {
			k, err := cast.ToInt64E(row[pk.Name])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", runtime.ErrKeyMismatch, err)
			}
			keys = append(keys, k)
		}
		if err := fillReturned(records, pk.Name, explicit, keys); err != nil {
			return nil, err
		}
		return records, nil
	}

	res, err := e.x.Exec(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, withDuplicateValue(err, records)
	}
	if !slices.Contains(explicit, nil) {
		return records, nil
	}
	first, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	fillFromLastID(records, pk.Name, explicit, first)
	return records, nil
}

// withDuplicateValue completes a duplicate key error that names the column
// but not the value, as SQLite reports them. Only a single-record batch
// identifies the offending value.
func withDuplicateValue(err error, records []*schema.Entity) error {
	var dk *runtime.DuplicateKeyError
	if len(records) != 1 || !errors.As(err, &dk) || dk.Value != nil {
		return err
	}
	col := dk.Key
	if strings.Contains(col, ",") {
		return err
	}
	if i := strings.LastIndexByte(col, '.'); i >= 0 {
		col = col[i+1:]
	}
	if v, ok := records[0].Get(col); ok {
		dk.Value = v
	}
	return err
}

// explicitKeys returns the key of each record, nil where it is generated.
func explicitKeys(records []*schema.Entity, key string) ([]*int64, error) {
	out := make([]*int64, len(records))
	for i, rec := range records {
		v, ok := rec.Get(key)
		if !ok || v == nil || filter.IsUndefined(v) {
			continue
		}
		k, err := cast.ToInt64E(v)
		if err != nil {
			return nil, runtime.NewUsageError(fmt.Sprintf("[%d].%s", i, key), "key %v is not an integer", v)
		}
		out[i] = &k
	}
	return out, nil
}

// fillFromLastID back-fills keys from the id the backend generated for the
// first record without a key. Later generated keys continue from the
// highest key seen so far; an explicit key never moves the sequence back.
func fillFromLastID(records []*schema.Entity, key string, explicit []*int64, first int64) {
	next := first
	started := false
	for i, rec := range records {
		if k := explicit[i]; k != nil {
			if started && *k >= next {
				next = *k + 1
			}
			continue
		}
		rec.Set(key, next)
		next++
		started = true
	}
}

// fillReturned matches keys read back with RETURNING to the batch. Keys that
// are not explicit belong to generated records, which receive them in
// ascending order.
func fillReturned(records []*schema.Entity, key string, explicit []*int64, keys []int64) error {
	if len(keys) != len(records) {
		return fmt.Errorf("%w: %d keys for %d records", runtime.ErrKeyMismatch, len(keys), len(records))
	}

	pending := make(map[int64]int)
	for _, k := range explicit {
		if k != nil {
			pending[*k]++
		}
	}
	generated := make([]int64, 0, len(keys))
	for _, k := range keys {
		if pending[k] > 0 {
			pending[k]--
			continue
		}
		generated = append(generated, k)
	}
	for k, n := range pending {
		if n > 0 {
			return fmt.Errorf("%w: key %d was not returned", runtime.ErrKeyMismatch, k)
		}
	}
	slices.Sort(generated)

	j := 0
	for i, rec := range records {
		if explicit[i] != nil {
			continue
		}
		rec.Set(key, generated[j])
		j++
	}
	return nil
}
