package schema

import (
	"fmt"
	"sort"
	"strings"

	language "github.com/hanpama/modgraph/internal/language"
)

const defaultDeprecationReason = "No longer supported"

// Build validates the given SDL sources, folds every type extension into its
// base definition and returns the executable schema. The sources are loaded
// in order, so a fragment may extend types declared by an earlier one.
//
// Fields start out synchronous; callers binding resolvers flip Async on the
// fields they back.
func Build(sources ...*language.Source) (*Schema, error) {
	if err := checkExtensionTargets(sources); err != nil {
		return nil, err
	}
	doc, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	if doc.Query == nil {
		return nil, fmt.Errorf("query root type must be provided")
	}
	return BuildFromAST(doc), nil
}

// checkExtensionTargets rejects a type extension whose type no source
// defines. gqlparser turns such an extension into a definition of its own.
func checkExtensionTargets(sources []*language.Source) error {
	defined := make(map[string]bool)
	var extensions language.DefinitionList
	for _, src := range append([]*language.Source{language.Prelude}, sources...) {
		doc, err := language.ParseSchemaSource(src)
		if err != nil {
			return err
		}
		for _, def := range doc.Definitions {
			defined[def.Name] = true
		}
		extensions = append(extensions, doc.Extensions...)
	}
	for _, ext := range extensions {
		if !defined[ext.Name] {
			return language.ErrorAt(ext.Position, "Cannot extend type %s because it is not defined.", ext.Name)
		}
	}
	return nil
}

// BuildFromSDL builds a schema from a single SDL document.
func BuildFromSDL(sdl string) (*Schema, error) {
	return Build(language.NewSource("schema.graphql", sdl))
}

// BuildFromAST converts a validated gqlparser schema.
func BuildFromAST(doc *language.Schema) *Schema {
	s := NewSchema(doc.Description)
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}

	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := doc.Types[name]
		switch def.Kind {
		case language.Object:
			s.AddType(buildComposite(def, TypeKindObject))
		case language.Interface:
			t := buildComposite(def, TypeKindInterface)
			for _, impl := range doc.PossibleTypes[def.Name] {
				t.AddPossibleType(impl.Name)
			}
			s.AddType(t)
		case language.Union:
			t := NewType(def.Name, TypeKindUnion, def.Description).SetBuiltIn(isBuiltIn(def))
			for _, member := range def.Types {
				t.AddPossibleType(member)
			}
			s.AddType(t)
		case language.Enum:
			s.AddType(buildEnum(def))
		case language.InputObject:
			s.AddType(buildInput(def))
		case language.Scalar:
			s.AddType(buildScalar(def))
		}
	}

	for _, dir := range doc.Directives {
		s.AddDirective(buildDirective(dir))
	}
	return s
}

func buildComposite(def *language.Definition, kind TypeKind) *Type {
	t := NewType(def.Name, kind, def.Description).SetBuiltIn(isBuiltIn(def))
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		// Meta fields (__typename, __schema, __type) are served by the executor
		// and the introspection runtime.
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		t.AddField(buildField(fd))
	}
	return t
}

func buildField(def *language.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
			SetDefault(constValue(arg.DefaultValue))
		if reason, ok := deprecation(arg.Directives); ok {
			in.Deprecate(reason)
		}
		f.AddArgument(in)
	}
	return f
}

func buildEnum(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description).SetBuiltIn(isBuiltIn(def))
	for _, v := range def.EnumValues {
		ev := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			ev.Deprecate(reason)
		}
		t.AddEnumValue(ev)
	}
	return t
}

func buildInput(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetBuiltIn(isBuiltIn(def)).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, fd := range def.Fields {
		in := NewInputValue(fd.Name, fd.Description, buildTypeRef(fd.Type)).
			SetDefault(constValue(fd.DefaultValue))
		if reason, ok := deprecation(fd.Directives); ok {
			in.Deprecate(reason)
		}
		t.AddInputField(in)
	}
	return t
}

func buildScalar(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description).SetBuiltIn(isBuiltIn(def))
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if url := d.Arguments.ForName("url"); url != nil && url.Value != nil {
			t.SetSpecifiedByURL(url.Value.Raw)
		}
	}
	return t
}

func buildDirective(def *language.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	d.BuiltIn = fromPrelude(def.Position)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.AddArgument(NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
			SetDefault(constValue(arg.DefaultValue)))
	}
	return d
}

func isBuiltIn(def *language.Definition) bool {
	return def.BuiltIn || fromPrelude(def.Position)
}

func fromPrelude(pos *language.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(buildTypeRef(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.Elem != nil {
		return ListType(buildTypeRef(t.Elem))
	}
	return NamedType(t.NamedType)
}

func deprecation(directives language.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if reason := d.Arguments.ForName("reason"); reason != nil && reason.Value != nil {
		return reason.Value.Raw, true
	}
	return defaultDeprecationReason, true
}

// constValue converts a constant default value to its Go representation.
// Integers are narrowed to int to match variable coercion.
func constValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return narrowInts(out)
}

func narrowInts(v any) any {
	switch x := v.(type) {
	case int64:
		return int(x)
	case []any:
		for i := range x {
			x[i] = narrowInts(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = narrowInts(x[k])
		}
		return x
	}
	return v
}
