package compiler

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david-caro/inspire-matcher/internal/domain"
	"github.com/david-caro/inspire-matcher/internal/domain/match"
	"github.com/david-caro/inspire-matcher/internal/domain/query"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
)

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func arxivRecord() record.Value {
	return record.FromAny(map[string]any{
		"arxiv_eprints": []any{
			map[string]any{
				"categories": []any{"hep-th"},
				"value":      "hep-th/9711200",
			},
		},
	})
}

func publicationInfoSpec() match.Nested {
	return match.Nested{
		Paths: []string{
			"reference.publication_info.journal_title",
			"reference.publication_info.journal_volume",
			"reference.publication_info.artid",
		},
		SearchPaths: []string{
			"publication_info.journal_title",
			"publication_info.journal_volume",
			"publication_info.artid",
		},
	}
}

func TestCompileExact(t *testing.T) {
	spec := match.Exact{Path: "arxiv_eprints.value", SearchPath: "arxiv_eprints.value.raw"}

	got := CompileExact(spec, arxivRecord(), Options{})

	want := `{"query": {"bool": {"should": [
		{"match": {"arxiv_eprints.value.raw": "hep-th/9711200"}}
	]}}}`
	assert.JSONEq(t, want, toJSON(t, got))
}

func TestCompileExact_SupportsACollection(t *testing.T) {
	spec := match.Exact{
		Path:        "arxiv_eprints.value",
		SearchPath:  "arxiv_eprints.value.raw",
		Collections: []string{"HAL Hidden"},
	}

	got := CompileExact(spec, arxivRecord(), Options{})

	want := `{"query": {"bool": {
		"minimum_should_match": 1,
		"filter": {"bool": {"should": [
			{"match": {"_collections": "HAL Hidden"}}
		]}},
		"should": [
			{"match": {"arxiv_eprints.value.raw": "hep-th/9711200"}}
		]
	}}}`
	assert.JSONEq(t, want, toJSON(t, got))
}

func TestCompileExact_SupportsMultipleCollections(t *testing.T) {
	spec := match.Exact{
		Path:        "arxiv_eprints.value",
		SearchPath:  "arxiv_eprints.value.raw",
		Collections: []string{"CDS Hidden", "HAL Hidden"},
	}

	got := CompileExact(spec, arxivRecord(), Options{})

	want := `{"query": {"bool": {
		"minimum_should_match": 1,
		"filter": {"bool": {"should": [
			{"match": {"_collections": "CDS Hidden"}},
			{"match": {"_collections": "HAL Hidden"}}
		]}},
		"should": [
			{"match": {"arxiv_eprints.value.raw": "hep-th/9711200"}}
		]
	}}}`
	assert.JSONEq(t, want, toJSON(t, got))
}

func TestCompileExact_CustomCollectionsField(t *testing.T) {
	spec := match.Exact{Path: "arxiv_eprints.value", SearchPath: "v", Collections: []string{"Literature"}}

	got := CompileExact(spec, arxivRecord(), Options{CollectionsField: "collections.primary"})

	b := got.Query.(query.Bool)
	require.NotNil(t, b.Filter)
	assert.Equal(t, query.NewMatch("collections.primary", "Literature"), b.Filter.Should[0])
}

func TestCompileExact_SupportsNonListFields(t *testing.T) {
	spec := match.Exact{Path: "reference.arxiv_eprint", SearchPath: "arxiv_eprints.value.raw"}
	rec := record.FromAny(map[string]any{
		"reference": map[string]any{"arxiv_eprint": "hep-th/9711200"},
	})

	got := CompileExact(spec, rec, Options{})

	want := `{"query": {"bool": {"should": [
		{"match": {"arxiv_eprints.value.raw": "hep-th/9711200"}}
	]}}}`
	assert.JSONEq(t, want, toJSON(t, got))
}

func TestCompileExact_OneClausePerValue(t *testing.T) {
	spec := match.Exact{Path: "dois.value", SearchPath: "dois.value.raw"}
	rec := record.FromAny(map[string]any{
		"dois": []any{
			map[string]any{"value": "10.1/a"},
			map[string]any{"value": "10.1/b"},
			map[string]any{"source": "arXiv"},
			map[string]any{"value": "10.1/c"},
		},
	})

	got := CompileExact(spec, rec, Options{})

	should := got.Query.(query.Bool).Should
	require.Len(t, should, 3)
	assert.Equal(t, query.NewMatch("dois.value.raw", "10.1/a"), should[0])
	assert.Equal(t, query.NewMatch("dois.value.raw", "10.1/b"), should[1])
	assert.Equal(t, query.NewMatch("dois.value.raw", "10.1/c"), should[2])
}

func TestCompileExact_NoValues(t *testing.T) {
	spec := match.Exact{Path: "dois.value", SearchPath: "dois.value.raw", Collections: []string{"HAL Hidden"}}

	got := CompileExact(spec, arxivRecord(), Options{})

	b := got.Query.(query.Bool)
	assert.NotNil(t, b.Should)
	assert.Empty(t, b.Should)
	assert.Contains(t, toJSON(t, got), `"should":[]`)
}

func TestCompileNested(t *testing.T) {
	rec := record.FromAny(map[string]any{
		"reference": map[string]any{
			"publication_info": map[string]any{
				"journal_title":  "Phys.Rev.",
				"journal_volume": "D94",
				"artid":          "124054",
			},
		},
	})

	got, ok, err := CompileNested(publicationInfoSpec(), rec)
	require.NoError(t, err)
	require.True(t, ok)

	want := `{"query": {"nested": {
		"path": "publication_info",
		"query": {"bool": {"must": [
			{"match": {"publication_info.journal_title": "Phys.Rev."}},
			{"match": {"publication_info.journal_volume": "D94"}},
			{"match": {"publication_info.artid": "124054"}}
		]}}
	}}}`
	assert.JSONEq(t, want, toJSON(t, got))
}

func TestCompileNested_RequiresAllPathsToContainAValue(t *testing.T) {
	rec := record.FromAny(map[string]any{
		"reference": map[string]any{
			"publication_info": map[string]any{
				"label": "23",
				"misc":  []any{"Strai~burger, C., this Conference"},
			},
		},
	})

	got, ok, err := CompileNested(publicationInfoSpec(), rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, got.IsZero())
}

func TestCompileNested_PartialCoverage(t *testing.T) {
	full := map[string]any{
		"journal_title":  "Phys.Rev.",
		"journal_volume": "D94",
		"artid":          "124054",
	}
	for missing := range full {
		t.Run("without "+missing, func(t *testing.T) {
			info := make(map[string]any, len(full))
			for k, v := range full {
				if k != missing {
					info[k] = v
				}
			}
			rec := record.FromAny(map[string]any{
				"reference": map[string]any{"publication_info": info},
			})

			_, ok, err := CompileNested(publicationInfoSpec(), rec)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCompileNested_EmptyStringIsNoValue(t *testing.T) {
	rec := record.FromAny(map[string]any{
		"reference": map[string]any{
			"publication_info": map[string]any{
				"journal_title":  "Phys.Rev.",
				"journal_volume": "",
				"artid":          "124054",
			},
		},
	})

	got, ok, err := CompileNested(publicationInfoSpec(), rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, got.IsZero())
}

func TestCompileNested_FirstValueOfList(t *testing.T) {
	spec := match.Nested{
		Paths:       []string{"authors.full_name"},
		SearchPaths: []string{"authors.full_name"},
	}
	rec := record.FromAny(map[string]any{
		"authors": []any{
			map[string]any{"full_name": "Smith, J."},
			map[string]any{"full_name": "Doe, J."},
		},
	})

	got, ok, err := CompileNested(spec, rec)
	require.NoError(t, err)
	require.True(t, ok)

	must := got.Query.(query.Nested).Query.(query.Bool).Must
	assert.Equal(t, []query.Query{query.NewMatch("authors.full_name", "Smith, J.")}, must)
}

func TestCompileNested_RaisesWhenSearchPathsDontShareACommonPath(t *testing.T) {
	spec := match.Nested{
		Paths:       []string{"foo.bar", "foo.baz"},
		SearchPaths: []string{"bar", "baz"},
	}

	_, _, err := CompileNested(spec, record.Value{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoCommonPath)
	assert.Contains(t, err.Error(), "common path")
}

func TestCompileNested_RaisesWhenPathsAndSearchPathsDontHaveTheSameLength(t *testing.T) {
	spec := match.Nested{
		Paths:       []string{"foo", "bar"},
		SearchPaths: []string{"baz"},
	}

	_, _, err := CompileNested(spec, record.Value{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLengthMismatch)
	assert.Contains(t, err.Error(), "same length")
}

func TestCompile_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		spec       match.Specification
		rec        any
		want       Outcome
		wantSignal bool
	}{
		{
			name:       "exact with values",
			spec:       match.Exact{Path: "a", SearchPath: "a.raw"},
			rec:        map[string]any{"a": "x"},
			want:       OutcomeQuery,
			wantSignal: true,
		},
		{
			name: "exact without values",
			spec: match.Exact{Path: "a", SearchPath: "a.raw"},
			rec:  map[string]any{"b": "x"},
			want: OutcomeNoSignal,
		},
		{
			name:       "nested full coverage",
			spec:       match.Nested{Paths: []string{"a", "b"}, SearchPaths: []string{"p.a", "p.b"}},
			rec:        map[string]any{"a": "x", "b": "y"},
			want:       OutcomeQuery,
			wantSignal: true,
		},
		{
			name: "nested partial coverage",
			spec: match.Nested{Paths: []string{"a", "b"}, SearchPaths: []string{"p.a", "p.b"}},
			rec:  map[string]any{"a": "x"},
			want: OutcomeAbsent,
		},
		{
			name: "nil record",
			spec: match.Nested{Paths: []string{"a"}, SearchPaths: []string{"p.a"}},
			rec:  nil,
			want: OutcomeAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompileAny(tt.spec, tt.rec, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.spec.Type(), got.Type)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Equal(t, tt.wantSignal, got.HasSignal())
			if tt.want == OutcomeAbsent {
				assert.True(t, got.Query.IsZero())
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(nil, record.Value{}, Options{})
	assert.ErrorIs(t, err, domain.ErrUnknownMatchType)

	_, err = Compile(&match.Exact{Path: "a", SearchPath: "b"}, record.Value{}, Options{})
	assert.ErrorIs(t, err, domain.ErrUnknownMatchType)

	_, err = Compile(match.Exact{Path: "a"}, record.FromAny(map[string]any{"a": "x"}), Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidSpecification)
	assert.Contains(t, err.Error(), "search_path is required")

	_, err = CompileAny(match.Nested{Paths: []string{"a"}}, nil, Options{})
	assert.ErrorIs(t, err, domain.ErrLengthMismatch)
	assert.Contains(t, err.Error(), "compile nested")
}

func TestCompile_Idempotent(t *testing.T) {
	rec := record.FromAny(map[string]any{
		"arxiv_eprints": []any{
			map[string]any{"value": "hep-th/9711200"},
			map[string]any{"value": "1607.06746"},
		},
		"reference": map[string]any{
			"publication_info": map[string]any{"journal_title": "Phys.Rev.", "artid": "1"},
		},
	})
	specs := []match.Specification{
		match.Exact{Path: "arxiv_eprints.value", SearchPath: "arxiv_eprints.value.raw", Collections: []string{"a", "b"}},
		match.Nested{
			Paths:       []string{"reference.publication_info.journal_title", "reference.publication_info.artid"},
			SearchPaths: []string{"publication_info.journal_title", "publication_info.artid"},
		},
	}

	for _, spec := range specs {
		first, err := Compile(spec, rec, Options{})
		require.NoError(t, err)
		firstJSON := toJSON(t, first.Query)
		for i := 0; i < 20; i++ {
			again, err := Compile(spec, rec, Options{})
			require.NoError(t, err)
			if diff := cmp.Diff(first, again); diff != "" {
				t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
			}
			assert.Equal(t, firstJSON, toJSON(t, again.Query))
		}
	}
}

func TestCompile_Concurrent(t *testing.T) {
	spec := match.Exact{Path: "arxiv_eprints.value", SearchPath: "arxiv_eprints.value.raw"}
	rec := arxivRecord()
	want := toJSON(t, CompileExact(spec, rec, Options{}))

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := Compile(spec, rec, Options{})
			if err != nil {
				return
			}
			data, _ := json.Marshal(c.Query)
			results[i] = string(data)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, want, got, "goroutine %d", i)
	}
}
