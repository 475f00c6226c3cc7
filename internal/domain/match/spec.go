// Package match defines declarative match specifications.
package match

import (
	"fmt"
	"strings"

	"github.com/david-caro/inspire-matcher/internal/domain"
	"github.com/david-caro/inspire-matcher/internal/domain/record"
)

// Specification is one matching strategy. It is implemented by Exact and Nested only.
type Specification interface {
	Type() Type
	Validate() error
	sealed()
}

// Exact matches records sharing any value found at Path, searched at SearchPath.
type Exact struct {
	Path        string
	SearchPath  string
	Collections []string
}

// NewExact validates and creates an Exact specification.
func NewExact(path, searchPath string, collections ...string) (Exact, error) {
	e := Exact{Path: path, SearchPath: searchPath, Collections: collections}
	if err := e.Validate(); err != nil {
		return Exact{}, err
	}
	return e, nil
}

// Type implements Specification.
func (Exact) Type() Type { return TypeExact }

// Validate checks that both paths are set.
func (e Exact) Validate() error {
	if e.Path == "" {
		return domain.NewSpecificationError(domain.ErrInvalidSpecification, "exact path is required")
	}
	if e.SearchPath == "" {
		return domain.NewSpecificationError(domain.ErrInvalidSpecification, "exact search_path is required")
	}
	return nil
}

func (Exact) sealed() {}

// Nested matches records where every search path holds the value of the
// corresponding record path within one nested sub-document.
type Nested struct {
	Paths       []string
	SearchPaths []string
}

// NewNested validates and creates a Nested specification.
func NewNested(paths, searchPaths []string) (Nested, error) {
	n := Nested{Paths: paths, SearchPaths: searchPaths}
	if err := n.Validate(); err != nil {
		return Nested{}, err
	}
	return n, nil
}

// Type implements Specification.
func (Nested) Type() Type { return TypeNested }

// Validate checks the length and common path invariants.
func (n Nested) Validate() error {
	_, err := n.CommonPath()
	return err
}

// CommonPath returns the nested document path shared by all search paths.
func (n Nested) CommonPath() (string, error) {
	if len(n.Paths) != len(n.SearchPaths) {
		return "", domain.NewSpecificationError(domain.ErrLengthMismatch,
			"got %d paths and %d search_paths", len(n.Paths), len(n.SearchPaths))
	}
	return CommonPath(n.SearchPaths)
}

func (Nested) sealed() {}

// CommonPath infers the directory (all segments but the last) shared by every
// search path. Top-level fields and differing directories have no common path.
func CommonPath(searchPaths []string) (string, error) {
	if len(searchPaths) == 0 {
		return "", domain.NewSpecificationError(domain.ErrNoCommonPath, "no search_paths given")
	}
	var common string
	for i, sp := range searchPaths {
		dir, _, ok := cutLast(sp)
		if !ok || dir == "" {
			return "", domain.NewSpecificationError(domain.ErrNoCommonPath,
				"search_path %q is not inside a nested document", sp)
		}
		if i == 0 {
			common = dir
			continue
		}
		if dir != common {
			return "", domain.NewSpecificationError(domain.ErrNoCommonPath,
				"search_path %q is not under %q", sp, common)
		}
	}
	return common, nil
}

func cutLast(path string) (dir, field string, ok bool) {
	i := strings.LastIndex(path, record.Separator)
	if i < 0 {
		return "", path, false
	}
	return path[:i], path[i+1:], true
}

// Algorithm is a named, ordered list of specifications applied to one record.
type Algorithm struct {
	Name    string
	Queries []Specification
}

// NewAlgorithm validates every specification of an algorithm.
func NewAlgorithm(name string, queries []Specification) (Algorithm, error) {
	if name == "" {
		return Algorithm{}, fmt.Errorf("algorithm name is required")
	}
	for i, q := range queries {
		if err := q.Validate(); err != nil {
			return Algorithm{}, fmt.Errorf("algorithm %q query %d: %w", name, i, err)
		}
	}
	return Algorithm{Name: name, Queries: queries}, nil
}
