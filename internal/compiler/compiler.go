// Package compiler turns match specifications and records into search queries.
package compiler

import (
	"fmt"

	"github.com/david-caro/inspire-matcher/internal/domain"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/query"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
)

// DefaultCollectionsField is the search field holding record collections.
const DefaultCollectionsField = "_collections"

// Options tune query emission.
type Options struct {
	CollectionsField string
}

func (o Options) collectionsField() string {
	if o.CollectionsField == "" {
		return DefaultCollectionsField
	}
	return o.CollectionsField
}

// Outcome classifies a successful compilation.
type Outcome string

// Compilation outcomes.
const (
	// OutcomeQuery means a query carrying match signal was produced.
	OutcomeQuery Outcome = "query"
	// OutcomeNoSignal means an exact query with no value clauses was produced.
	// Submitting it would match everything, so callers must not.
	OutcomeNoSignal Outcome = "no_signal"
	// OutcomeAbsent means no query was produced because a nested path had no value.
	OutcomeAbsent Outcome = "absent"
)

// Compiled is the result of compiling one specification against one record.
type Compiled struct {
	Type    match.Type
	Outcome Outcome
	Query   query.Envelope
}

// HasSignal reports whether the query may be submitted to the search engine.
func (c Compiled) HasSignal() bool {
	return c.Outcome == OutcomeQuery
}

// Compile routes a specification to its compiler.
func Compile(spec match.Specification, rec record.Value, opts Options) (Compiled, error) {
	switch s := spec.(type) {
	case match.Exact:
		if err := s.Validate(); err != nil {
			return Compiled{}, err
		}
		q := CompileExact(s, rec, opts)
		outcome := OutcomeQuery
		if len(q.Query.(query.Bool).Should) == 0 {
			outcome = OutcomeNoSignal
		}
		return Compiled{Type: match.TypeExact, Outcome: outcome, Query: q}, nil
	case match.Nested:
		q, ok, err := CompileNested(s, rec)
		if err != nil {
			return Compiled{}, err
		}
		if !ok {
			return Compiled{Type: match.TypeNested, Outcome: OutcomeAbsent}, nil
		}
		return Compiled{Type: match.TypeNested, Outcome: OutcomeQuery, Query: q}, nil
	case nil:
		return Compiled{}, domain.NewSpecificationError(domain.ErrUnknownMatchType, "nil specification")
	default:
		return Compiled{}, domain.NewSpecificationError(domain.ErrUnknownMatchType, "%s", spec.Type())
	}
}

// CompileAny compiles against a generically decoded record.
func CompileAny(spec match.Specification, rec any, opts Options) (Compiled, error) {
	c, err := Compile(spec, record.FromAny(rec), opts)
	if err != nil {
		return Compiled{}, fmt.Errorf("compile %s: %w", specType(spec), err)
	}
	return c, nil
}

func specType(spec match.Specification) string {
	if spec == nil {
		return "unknown"
	}
	return string(spec.Type())
}
