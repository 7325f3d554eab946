// Package selector provides the deferred, chainable result builder returned
// by searches.
package selector

import (
	"context"
	"sync"

	"github.com/satishbabariya/magicorm/query/filter"
	"github.com/satishbabariya/magicorm/runtime"
	"github.com/satishbabariya/magicorm/schema"
)

// ErrNoModels is returned when none of the selected columns belongs to a model.
var ErrNoModels = runtime.NewUsageError("", "selector references no model")

// ExecFunc runs a selector against a backend.
type ExecFunc func(ctx context.Context, s *Selector) ([]*schema.Entity, error)

// Options holds pagination. Nil means unset.
type Options struct {
	Limit  *int
	Offset *int
}

// Selector accumulates criteria and pagination, then executes once.
// It is not safe to chain from several goroutines, but All may be called
// concurrently once chaining is done.
type Selector struct {
	exec    ExecFunc
	props   schema.Columns
	queries []filter.Query
	opts    Options

	once   sync.Once
	result []*schema.Entity
	err    error
}

// New creates a selector over the given columns.
func New(exec ExecFunc, props ...schema.Columns) *Selector {
	s := &Selector{exec: exec}
	for _, p := range props {
		s.props = append(s.props, p...)
	}
	return s
}

// Where adds criteria. Criteria from separate calls, or several given to
// one call, are OR-combined.
func (s *Selector) Where(queries ...filter.Query) *Selector {
	s.queries = append(s.queries, queries...)
	return s
}

// Limit sets the maximum number of rows.
func (s *Selector) Limit(n int) *Selector {
	s.opts.Limit = &n
	return s
}

// Offset sets the number of rows to skip.
func (s *Selector) Offset(n int) *Selector {
	s.opts.Offset = &n
	return s
}

// Queries returns a copy of the accumulated criteria.
func (s *Selector) Queries() []filter.Query {
	out := make([]filter.Query, len(s.queries))
	copy(out, s.queries)
	return out
}

// Filter returns the accumulated criteria merged into one query.
func (s *Selector) Filter() filter.Query {
	return filter.Resolve(s.queries...)
}

func (s *Selector) Options() Options {
	return s.opts
}

func (s *Selector) Properties() schema.Columns {
	out := make(schema.Columns, len(s.props))
	copy(out, s.props)
	return out
}

// Models returns the distinct models of the selected columns.
func (s *Selector) Models() []*schema.Model {
	return s.props.Models()
}

// All executes the selector on first call and returns the memoized
// result and error on every call.
func (s *Selector) All(ctx context.Context) ([]*schema.Entity, error) {
	s.once.Do(func() {
		if len(s.Models()) == 0 {
			s.err = ErrNoModels
			return
		}
		s.result, s.err = s.exec(ctx, s)
	})
	return s.result, s.err
}

// First executes the selector and returns its first entity, or nil.
func (s *Selector) First(ctx context.Context) (*schema.Entity, error) {
	all, err := s.All(ctx)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}
