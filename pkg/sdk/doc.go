// Package matcher compiles record-matching specifications into search-engine
// queries in process, without running the HTTP service.
//
// Two specification types are supported:
//   - exact: every value found at path becomes an OR-ed match clause on search_path
//   - nested: one value per path becomes an AND-ed clause inside a nested query
//
// # Single specification
//
//	client, _ := matcher.New()
//	res, _ := client.Compile(ctx, map[string]any{
//	    "type":        "exact",
//	    "path":        "arxiv_eprints.value",
//	    "search_path": "arxiv_eprints.value.raw",
//	}, record)
//	if res.HasSignal() {
//	    search(res.Query)
//	}
//
// # Named algorithms
//
//	client, _ := matcher.New(
//	    matcher.WithAlgorithm("references", exactSpec, nestedSpec),
//	    matcher.WithLogger(logger),
//	)
//	results, _ := client.CompileAlgorithm(ctx, "references", record)
package matcher
