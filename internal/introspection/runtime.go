package introspection

import (
	"context"
	"sort"

	executor "github.com/hanpama/modgraph/internal/executor"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// IntrospectionWrapper holds both the runtime and extended schema
type IntrospectionWrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap returns a Runtime that serves the __schema and __type root fields and
// every field of the introspection types, delegating all other work to base.
//
// The introspection types themselves (__Schema, __Type, ...) are expected to
// be part of sch, as they are for schemas produced by schema.Build. The
// returned Schema is a copy whose query type carries the two meta fields; sch
// is left untouched.
func Wrap(base executor.Runtime, sch *schema.Schema) *IntrospectionWrapper {
	extended := extendSchema(sch)
	return &IntrospectionWrapper{
		Runtime: &runtime{base: base, schema: extended, originalSchema: sch},
		Schema:  extended,
	}
}

func extendSchema(original *schema.Schema) *schema.Schema {
	extended := schema.NewSchema(original.Description).
		SetQueryType(original.QueryType).
		SetMutationType(original.MutationType).
		SetSubscriptionType(original.SubscriptionType)
	extended.Directives = original.Directives
	for _, t := range original.Types {
		extended.AddType(t)
	}

	if t := original.Types["__Type"]; t != nil {
		// Older preludes lack the newer __Type members.
		patched := copyType(t)
		if patched.Field("specifiedByURL") == nil {
			patched.AddField(schema.NewField("specifiedByURL", "", schema.NamedType("String")))
		}
		if patched.Field("isOneOf") == nil {
			patched.AddField(schema.NewField("isOneOf", "", schema.NamedType("Boolean")))
		}
		extended.AddType(patched)
	}

	if q := original.GetQueryType(); q != nil {
		queryCopy := copyType(q)
		queryCopy.AddField(schema.NewField("__schema",
			"Access the current type schema of this server.",
			schema.NonNullType(schema.NamedType("__Schema"))))
		queryCopy.AddField(schema.NewField("__type",
			"Request the type information of a single type.",
			schema.NamedType("__Type")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))))
		extended.AddType(queryCopy)
	}
	return extended
}

func copyType(t *schema.Type) *schema.Type {
	c := *t
	c.Fields = append([]*schema.Field(nil), t.Fields...)
	return &c
}

type runtime struct {
	base           executor.Runtime
	schema         *schema.Schema // Extended schema with introspection fields
	originalSchema *schema.Schema // Schema reported by introspection queries
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	switch src := source.(type) {
	case *schema.Schema:
		if v, ok := resolveSchemaField(src, field); ok {
			return v, nil
		}
	case *schema.Type:
		if v, ok := resolveTypeField(r.originalSchema, src, field, args); ok {
			return v, nil
		}
	case *schema.TypeRef:
		if v, ok := resolveTypeRefField(r.originalSchema, src, field, args); ok {
			return v, nil
		}
	case *schema.Field:
		if v, ok := resolveFieldField(src, field, args); ok {
			return v, nil
		}
	case *schema.InputValue:
		if v, ok := resolveInputValueField(r.originalSchema, src, field); ok {
			return v, nil
		}
	case *schema.EnumValue:
		if v, ok := resolveEnumValueField(src, field); ok {
			return v, nil
		}
	case *schema.Directive:
		if v, ok := resolveDirectiveField(src, field, args); ok {
			return v, nil
		}
	}

	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.originalSchema, nil
		case "__type":
			return r.resolveTypeQuery(args), nil
		}
	}

	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	return r.base.SerializeLeafValue(ctx, typ, value)
}

func (r *runtime) Subscribe(ctx context.Context, objectType, field string, source any, args map[string]any) (<-chan any, error) {
	return r.base.Subscribe(ctx, objectType, field, source, args)
}

// --- helpers ---

func (r *runtime) resolveTypeQuery(args map[string]any) *schema.Type {
	name, _ := args["name"].(string)
	if name == "" {
		return nil
	}
	return r.originalSchema.Types[name]
}

func resolveSchemaTypes(sch *schema.Schema) []*schema.Type {
	if sch.Types == nil {
		return []*schema.Type{}
	}
	out := make([]*schema.Type, 0, len(sch.Types))
	for _, t := range sch.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveSchemaDirectives(sch *schema.Schema) []*schema.Directive {
	if sch.Directives == nil {
		return []*schema.Directive{}
	}
	dirs := make([]*schema.Directive, 0, len(sch.Directives))
	for _, d := range sch.Directives {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs
}

func resolveTypeFields(t *schema.Type, args map[string]any) []*schema.Field {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.Field{}
	for _, f := range t.GetOrderedFields() {
		if !includeDeprecated && f.IsDeprecated {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypeInterfaces(sch *schema.Schema, t *schema.Type) []*schema.Type {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	out := make([]*schema.Type, 0, len(t.Interfaces))
	for _, name := range t.Interfaces {
		if def := sch.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypePossibleTypes(sch *schema.Schema, t *schema.Type) []*schema.Type {
	if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
		return nil
	}
	pts := []*schema.Type{}
	for _, name := range t.PossibleTypes {
		if def := sch.Types[name]; def != nil {
			pts = append(pts, def)
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Name < pts[j].Name })
	return pts
}

func resolveTypeEnumValues(t *schema.Type, args map[string]any) []*schema.EnumValue {
	if t.Kind != schema.TypeKindEnum {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.EnumValue{}
	for _, ev := range t.EnumValues {
		if !includeDeprecated && ev.IsDeprecated {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveTypeInputFields(t *schema.Type, args map[string]any) []*schema.InputValue {
	if t.Kind != schema.TypeKindInputObject {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, iv := range t.GetOrderedInputFields() {
		if !includeDeprecated && iv.IsDeprecated {
			continue
		}
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveFieldArgs(f *schema.Field, args map[string]any) []*schema.InputValue {
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, a := range f.GetOrderedArguments() {
		if !includeDeprecated && a.IsDeprecated {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func deprecationReason(deprecated bool, reason string) any {
	if deprecated {
		return reason
	}
	return nil
}

// resolveInputValueDefaultValue renders the default value as a GraphQL literal.
func resolveInputValueDefaultValue(sch *schema.Schema, a *schema.InputValue) any {
	if a.DefaultValue == nil {
		return nil
	}
	return schema.RenderValue(sch, a.Type, a.DefaultValue)
}

// optional maps the empty string to null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func resolveDirectiveLocations(d *schema.Directive) []string {
	locs := make([]string, len(d.Locations))
	for i, l := range d.Locations {
		locs[i] = string(l)
	}
	sort.Strings(locs)
	return locs
}

func resolveDirectiveArgs(d *schema.Directive, args map[string]any) []*schema.InputValue {
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, a := range d.Arguments {
		if !includeDeprecated && a.IsDeprecated {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveSchemaField(sch *schema.Schema, field string) (any, bool) {
	switch field {
	case "types":
		return resolveSchemaTypes(sch), true
	case "queryType":
		return sch.GetQueryType(), true
	case "mutationType":
		return sch.RootType("mutation"), true
	case "subscriptionType":
		return sch.RootType("subscription"), true
	case "directives":
		return resolveSchemaDirectives(sch), true
	case "description":
		return optional(sch.Description), true
	}
	return nil, false
}

func resolveTypeField(sch *schema.Schema, t *schema.Type, field string, args map[string]any) (any, bool) {
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return optional(t.Description), true
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, true
		}
		return *t.SpecifiedByURL, true
	case "fields":
		return resolveTypeFields(t, args), true
	case "interfaces":
		return resolveTypeInterfaces(sch, t), true
	case "possibleTypes":
		return resolveTypePossibleTypes(sch, t), true
	case "enumValues":
		return resolveTypeEnumValues(t, args), true
	case "inputFields":
		return resolveTypeInputFields(t, args), true
	case "isOneOf":
		return t.OneOf, true
	case "ofType":
		// Wrappers are TypeRef values; a named type has no ofType.
		return nil, true
	}
	return nil, false
}

// resolveTypeRefField serves __Type fields for a type reference. Wrapper
// references (LIST, NON_NULL) only have a kind and an ofType; named references
// are answered by the definition they name.
func resolveTypeRefField(sch *schema.Schema, tr *schema.TypeRef, field string, args map[string]any) (any, bool) {
	if tr.Kind == schema.TypeRefKindNonNull || tr.Kind == schema.TypeRefKindList {
		switch field {
		case "kind":
			return string(tr.Kind), true
		case "ofType":
			return tr.OfType, true
		case "fields", "interfaces", "possibleTypes", "enumValues", "inputFields",
			"name", "description", "specifiedByURL", "isOneOf":
			return nil, true
		}
		return nil, false
	}
	def := sch.Types[tr.Named]
	if def == nil {
		return nil, true
	}
	return resolveTypeField(sch, def, field, args)
}

func resolveFieldField(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return optional(f.Description), true
	case "args":
		return resolveFieldArgs(f, args), true
	case "type":
		return f.Type, true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func resolveInputValueField(sch *schema.Schema, a *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return a.Name, true
	case "description":
		return optional(a.Description), true
	case "type":
		return a.Type, true
	case "defaultValue":
		return resolveInputValueDefaultValue(sch, a), true
	case "isDeprecated":
		return a.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(a.IsDeprecated, a.DeprecationReason), true
	}
	return nil, false
}

func resolveEnumValueField(ev *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return ev.Name, true
	case "description":
		return optional(ev.Description), true
	case "isDeprecated":
		return ev.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), true
	}
	return nil, false
}

func resolveDirectiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return optional(d.Description), true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return resolveDirectiveLocations(d), true
	case "args":
		return resolveDirectiveArgs(d, args), true
	}
	return nil, false
}

func boolArg(args map[string]any, name string, def bool) bool {
	if args == nil {
		return def
	}
	if v, ok := args[name]; ok {
		if b, ok2 := v.(bool); ok2 {
			return b
		}
	}
	return def
}
