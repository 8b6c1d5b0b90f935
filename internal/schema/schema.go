package schema

// Schema is the executable form of a composed SDL document. Types holds
// every named type, including the built-in scalars and the introspection
// types; root operation types are referenced by name.
type Schema struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive
}

// RootType returns the root type of the given operation type ("query",
// "mutation" or "subscription"), or nil when the schema has none.
func (s *Schema) RootType(operation string) *Type {
	var name string
	switch operation {
	case "query":
		name = s.QueryType
	case "mutation":
		name = s.MutationType
	case "subscription":
		name = s.SubscriptionType
	}
	if name == "" {
		return nil
	}
	return s.Types[name]
}

func (s *Schema) GetQueryType() *Type { return s.RootType("query") }

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which member lists are set depends on Kind:
// Fields and Interfaces for objects and interfaces, PossibleTypes for
// interfaces and unions, EnumValues for enums, InputFields for input
// objects.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string

	Fields        []*Field
	Interfaces    []string
	PossibleTypes []string
	EnumValues    []*EnumValue
	InputFields   []*InputValue

	SpecifiedByURL *string
	OneOf          bool

	// BuiltIn marks prelude definitions, which SDL rendering leaves out.
	BuiltIn bool
}

type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string

	// Async marks a field bound to a resolver. The executor resolves async
	// fields in one batch per depth; the rest read the parent value.
	Async bool
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
	BuiltIn      bool
}
