package match

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/david-caro/inspire-matcher/internal/domain"
)

// rawSpec is the configuration shape shared by all specification types.
type rawSpec struct {
	Type        string   `mapstructure:"type"`
	Path        string   `mapstructure:"path"`
	SearchPath  string   `mapstructure:"search_path"`
	Collections []string `mapstructure:"collections"`
	Paths       []string `mapstructure:"paths"`
	SearchPaths []string `mapstructure:"search_paths"`
}

// Decode builds a Specification from its configuration map. When type is
// omitted it is inferred from the presence of paths (nested) or path (exact).
// The result is validated.
func Decode(raw map[string]any) (Specification, error) {
	var rs rawSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &rs,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, domain.NewSpecificationError(domain.ErrInvalidSpecification, "%v", err)
	}

	t := Type(rs.Type)
	if t == "" {
		switch {
		case len(rs.Paths) > 0 || len(rs.SearchPaths) > 0:
			t = TypeNested
		case rs.Path != "":
			t = TypeExact
		}
	}

	var spec Specification
	switch t {
	case TypeExact:
		if len(rs.Paths) > 0 || len(rs.SearchPaths) > 0 {
			return nil, domain.NewSpecificationError(domain.ErrInvalidSpecification,
				"exact specification does not accept paths or search_paths")
		}
		spec = Exact{Path: rs.Path, SearchPath: rs.SearchPath, Collections: rs.Collections}
	case TypeNested:
		if rs.Path != "" || rs.SearchPath != "" || len(rs.Collections) > 0 {
			return nil, domain.NewSpecificationError(domain.ErrInvalidSpecification,
				"nested specification does not accept path, search_path or collections")
		}
		spec = Nested{Paths: rs.Paths, SearchPaths: rs.SearchPaths}
	default:
		return nil, domain.NewSpecificationError(domain.ErrUnknownMatchType, "%q", rs.Type)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// DecodeAlgorithm builds an Algorithm from a list of specification maps.
func DecodeAlgorithm(name string, queries []map[string]any) (Algorithm, error) {
	specs := make([]Specification, 0, len(queries))
	for i, q := range queries {
		spec, err := Decode(q)
		if err != nil {
			return Algorithm{}, fmt.Errorf("algorithm %q query %d: %w", name, i, err)
		}
		specs = append(specs, spec)
	}
	return NewAlgorithm(name, specs)
}

// Encode returns the configuration map of a specification.
func Encode(spec Specification) map[string]any {
	switch s := spec.(type) {
	case Exact:
		m := map[string]any{
			"type":        string(TypeExact),
			"path":        s.Path,
			"search_path": s.SearchPath,
		}
		if len(s.Collections) > 0 {
			m["collections"] = s.Collections
		}
		return m
	case Nested:
		return map[string]any{
			"type":         string(TypeNested),
			"paths":        s.Paths,
			"search_paths": s.SearchPaths,
		}
	default:
		return nil
	}
}
