package schema

// TypeRef is a possibly wrapped reference to a named type: [Int!]! is
// NonNull(List(NonNull(Named "Int"))).
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef
	Named  string
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }

func IsNonNull(t *TypeRef) bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList reports whether t is a list, nullable or not.
func IsList(t *TypeRef) bool {
	if IsNonNull(t) {
		t = t.OfType
	}
	return t != nil && t.Kind == TypeRefKindList
}

// Unwrap removes one List or NonNull wrapper. A named reference is
// returned as is.
func Unwrap(t *TypeRef) *TypeRef {
	if t != nil && t.OfType != nil {
		return t.OfType
	}
	return t
}

// GetNamedType returns the name at the bottom of t.
func GetNamedType(t *TypeRef) string {
	for t != nil && t.Kind != TypeRefKindNamed {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

// String renders t in SDL notation.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNamed:
		return t.Named
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	}
	return ""
}
