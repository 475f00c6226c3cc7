// Package record models schema-less bibliographic records as a tagged value tree.
package record

import "reflect"

// Kind is the variant of a record node.
type Kind uint8

// Node kinds.
const (
	Missing Kind = iota
	Scalar
	Mapping
	Sequence
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	default:
		return "missing"
	}
}

// Value is one node of a record tree. The zero Value is Missing.
type Value struct {
	kind   Kind
	scalar any
	fields map[string]Value
	items  []Value
}

// NewScalar wraps a leaf value. A nil value is Missing.
func NewScalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: Scalar, scalar: v}
}

// NewMapping creates a mapping node.
func NewMapping(fields map[string]Value) Value {
	return Value{kind: Mapping, fields: fields}
}

// NewSequence creates a sequence node.
func NewSequence(items ...Value) Value {
	return Value{kind: Sequence, items: items}
}

// FromAny converts a generically decoded JSON or YAML tree into a Value.
// Typed slices, arrays and string-keyed maps are converted element by element;
// []byte stays a scalar.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, child := range t {
			fields[k] = FromAny(child)
		}
		return NewMapping(fields)
	case []any:
		items := make([]Value, len(t))
		for i, child := range t {
			items[i] = FromAny(child)
		}
		return NewSequence(items...)
	case []map[string]any:
		items := make([]Value, len(t))
		for i, child := range t {
			items[i] = FromAny(child)
		}
		return NewSequence(items...)
	case []string:
		items := make([]Value, len(t))
		for i, child := range t {
			items[i] = NewScalar(child)
		}
		return NewSequence(items...)
	case []byte:
		return NewScalar(t)
	default:
		return fromReflect(reflect.ValueOf(v))
	}
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return Value{}
		}
		return sequenceOf(rv)
	case reflect.Array:
		return sequenceOf(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return NewScalar(rv.Interface())
		}
		if rv.IsNil() {
			return Value{}
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fields[iter.Key().String()] = FromAny(iter.Value().Interface())
		}
		return NewMapping(fields)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}
		}
		return FromAny(rv.Elem().Interface())
	default:
		return NewScalar(rv.Interface())
	}
}

func sequenceOf(rv reflect.Value) Value {
	items := make([]Value, rv.Len())
	for i := range items {
		items[i] = FromAny(rv.Index(i).Interface())
	}
	return NewSequence(items...)
}

// Kind returns the node variant.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the node holds nothing.
func (v Value) IsMissing() bool { return v.kind == Missing }

// Scalar returns the leaf value, or nil for non-scalar nodes.
func (v Value) Scalar() any { return v.scalar }

// Get returns the child at key. Non-mapping nodes and absent keys yield Missing.
func (v Value) Get(key string) Value {
	if v.kind != Mapping {
		return Value{}
	}
	return v.fields[key]
}

// Items returns the elements of a sequence node.
func (v Value) Items() []Value { return v.items }

// Len returns the number of fields or items.
func (v Value) Len() int {
	switch v.kind {
	case Mapping:
		return len(v.fields)
	case Sequence:
		return len(v.items)
	default:
		return 0
	}
}
