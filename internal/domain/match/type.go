package match

// Type is the match specification discriminator.
type Type string

// Match type constants.
const (
	// TypeExact matches any value of a single field.
	TypeExact Type = "exact"
	// TypeNested matches several fields together inside one nested sub-document.
	TypeNested Type = "nested"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == TypeExact || t == TypeNested
}
