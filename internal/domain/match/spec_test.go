package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david-caro/inspire-matcher/internal/domain"
)

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeExact.IsValid())
	assert.True(t, TypeNested.IsValid())
	assert.False(t, Type("fuzzy").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestNewExact(t *testing.T) {
	e, err := NewExact("arxiv_eprints.value", "arxiv_eprints.value.raw", "HAL Hidden")
	require.NoError(t, err)
	assert.Equal(t, TypeExact, e.Type())
	assert.Equal(t, []string{"HAL Hidden"}, e.Collections)

	_, err = NewExact("", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidSpecification)
	_, err = NewExact("x", "")
	assert.ErrorIs(t, err, domain.ErrInvalidSpecification)
}

func TestCommonPath(t *testing.T) {
	tests := []struct {
		name        string
		searchPaths []string
		want        string
		wantErr     error
	}{
		{
			name: "shared directory",
			searchPaths: []string{
				"publication_info.journal_title",
				"publication_info.journal_volume",
				"publication_info.artid",
			},
			want: "publication_info",
		},
		{
			name:        "deep shared directory",
			searchPaths: []string{"a.b.c", "a.b.d"},
			want:        "a.b",
		},
		{
			name:        "single entry",
			searchPaths: []string{"authors.full_name"},
			want:        "authors",
		},
		{
			name:        "top-level fields",
			searchPaths: []string{"bar", "baz"},
			wantErr:     domain.ErrNoCommonPath,
		},
		{
			name:        "one top-level field",
			searchPaths: []string{"a.b", "c"},
			wantErr:     domain.ErrNoCommonPath,
		},
		{
			name:        "different directories",
			searchPaths: []string{"a.b", "c.d"},
			wantErr:     domain.ErrNoCommonPath,
		},
		{
			name:        "prefix is not enough",
			searchPaths: []string{"a.b.c", "a.d"},
			wantErr:     domain.ErrNoCommonPath,
		},
		{
			name:        "leading separator",
			searchPaths: []string{".a"},
			wantErr:     domain.ErrNoCommonPath,
		},
		{
			name:    "empty",
			wantErr: domain.ErrNoCommonPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CommonPath(tt.searchPaths)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrInvalidSpecification)
				assert.Contains(t, err.Error(), "common path")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNested_Validate(t *testing.T) {
	_, err := NewNested([]string{"foo", "bar"}, []string{"baz"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLengthMismatch))
	assert.Contains(t, err.Error(), "same length")

	_, err = NewNested([]string{"foo.bar", "foo.baz"}, []string{"bar", "baz"})
	assert.ErrorIs(t, err, domain.ErrNoCommonPath)

	n, err := NewNested([]string{"a.x", "a.y"}, []string{"p.x", "p.y"})
	require.NoError(t, err)
	assert.Equal(t, TypeNested, n.Type())
	path, err := n.CommonPath()
	require.NoError(t, err)
	assert.Equal(t, "p", path)
}

func TestNewAlgorithm(t *testing.T) {
	_, err := NewAlgorithm("", nil)
	assert.Error(t, err)

	_, err = NewAlgorithm("bad", []Specification{Nested{Paths: []string{"a"}}})
	assert.ErrorIs(t, err, domain.ErrLengthMismatch)

	alg, err := NewAlgorithm("ok", []Specification{Exact{Path: "a", SearchPath: "b"}})
	require.NoError(t, err)
	assert.Len(t, alg.Queries, 1)
}
