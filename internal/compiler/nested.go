package compiler

import (
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/query"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
)

// CompileNested builds a nested must query matching every path together.
// Specification defects are reported before the record is read. ok is false
// when any path has no value or an empty string: partial data never produces
// a query.
func CompileNested(spec match.Nested, rec record.Value) (q query.Envelope, ok bool, err error) {
	common, err := spec.CommonPath()
	if err != nil {
		return query.Envelope{}, false, err
	}

	must := make([]query.Query, 0, len(spec.Paths))
	for i, path := range spec.Paths {
		values := record.Resolve(rec, path)
		if len(values) == 0 || values[0] == "" {
			return query.Envelope{}, false, nil
		}
		// Nested fields are scalar; only the first value is matched.
		must = append(must, query.NewMatch(spec.SearchPaths[i], values[0]))
	}

	return query.Envelope{Query: query.Nested{
		Path:  common,
		Query: query.Bool{Must: must},
	}}, true, nil
}
