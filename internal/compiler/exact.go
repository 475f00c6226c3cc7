package compiler

import (
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/query"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
)

// CompileExact builds a should query matching any value found at spec.Path.
// With collections, a filter requires at least one of them to match.
// No resolved values yields an empty should list, never an error.
func CompileExact(spec match.Exact, rec record.Value, opts Options) query.Envelope {
	values := record.Resolve(rec, spec.Path)

	should := make([]query.Query, 0, len(values))
	for _, v := range values {
		should = append(should, query.NewMatch(spec.SearchPath, v))
	}

	b := query.Bool{Should: should}
	if len(spec.Collections) > 0 {
		field := opts.collectionsField()
		collections := make([]query.Query, 0, len(spec.Collections))
		for _, c := range spec.Collections {
			collections = append(collections, query.NewMatch(field, c))
		}
		b.Filter = &query.Bool{Should: collections}
		b.MinimumShouldMatch = 1
	}

	return query.Envelope{Query: b}
}
