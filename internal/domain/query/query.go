// Package query models compiled search-engine queries in the engine's bool/nested DSL.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// Query is a node of a compiled query tree.
type Query interface {
	json.Marshaler
	isQuery()
}

// Match is a single field-match clause: {"match": {field: value}}.
type Match struct {
	Field string
	Value any
}

// NewMatch creates a field-match clause.
func NewMatch(field string, value any) Match {
	return Match{Field: field, Value: value}
}

// MarshalJSON implements json.Marshaler.
func (m Match) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"match": map[string]any{m.Field: m.Value},
	})
}

func (Match) isQuery() {}

// Bool is a boolean query. A nil clause slice is omitted from the output;
// an empty non-nil slice is emitted as [].
type Bool struct {
	Must               []Query
	Should             []Query
	Filter             *Bool
	MinimumShouldMatch int
}

// MarshalJSON implements json.Marshaler.
func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"bool": b.body()})
}

func (b Bool) body() map[string]any {
	body := make(map[string]any, 4)
	if b.Must != nil {
		body["must"] = b.Must
	}
	if b.Should != nil {
		body["should"] = b.Should
	}
	if b.Filter != nil {
		body["filter"] = *b.Filter
	}
	if b.MinimumShouldMatch > 0 {
		body["minimum_should_match"] = b.MinimumShouldMatch
	}
	return body
}

func (Bool) isQuery() {}

// Nested scopes a query to one element of an array-of-objects field.
type Nested struct {
	Path  string
	Query Query
}

// MarshalJSON implements json.Marshaler.
func (n Nested) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"nested": map[string]any{
			"path":  n.Path,
			"query": n.Query,
		},
	})
}

func (Nested) isQuery() {}

// Envelope is the top-level request body: {"query": ...}.
type Envelope struct {
	Query Query
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"query": e.Query})
}

// IsZero reports whether the envelope holds no query.
func (e Envelope) IsZero() bool { return e.Query == nil }

// Map returns the envelope as a generic map, as produced by decoding its JSON.
// Integers decode as int64 so record identifiers keep full precision.
func (e Envelope) Map() (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	parsed, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	m, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("query envelope decoded as %T", parsed)
	}
	return m, nil
}
