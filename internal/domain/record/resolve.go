package record

import "strings"

// Separator splits dotted paths into segments.
const Separator = "."

// Resolve returns the scalar values reachable at a dotted path.
// Sequences met along the way are fanned out: the remaining path is resolved
// against every element and the results are concatenated in element order.
// Missing keys yield no values, never an error.
func Resolve(v Value, path string) []any {
	if path == "" {
		return nil
	}
	return resolve(v, strings.Split(path, Separator), nil)
}

// ResolveAny resolves a dotted path against a generically decoded tree.
func ResolveAny(v any, path string) []any {
	return Resolve(FromAny(v), path)
}

func resolve(v Value, segments []string, out []any) []any {
	switch v.kind {
	case Sequence:
		for _, item := range v.items {
			out = resolve(item, segments, out)
		}
		return out
	case Mapping:
		if len(segments) == 0 {
			return out
		}
		child, ok := v.fields[segments[0]]
		if !ok {
			return out
		}
		return resolve(child, segments[1:], out)
	case Scalar:
		if len(segments) == 0 {
			out = append(out, v.scalar)
		}
		return out
	default:
		return out
	}
}
