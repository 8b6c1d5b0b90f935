package modgraph

import (
	"context"
)

// Resolvers is a resolver tree. Top level keys are GraphQL type names, second
// level keys are field names or reserved keys such as "__resolveType".
//
// Interior nodes are Resolvers or map[string]any; any other value is a leaf.
// Recognised leaves are ResolverFunc, SubscribeFunc, Field, *Field and
// TypeResolverFunc (or plain funcs with the same signatures), and Scalar as the
// value of a custom scalar type.
type Resolvers map[string]any

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	ParentType string
	FieldName  string
	// Path is the response path: field names and list indices.
	Path []any
}

// ResolveParams is passed to every resolver.
type ResolveParams struct {
	// Source is the parent value; the root value for root fields, the event
	// for subscription root fields.
	Source  any
	Args    map[string]any
	Context ContextValue
	Info    ResolveInfo
}

// ResolverFunc computes the value of a field.
type ResolverFunc func(ctx context.Context, p ResolveParams) (any, error)

// SubscribeFunc opens the source stream of a subscription field. Every value
// received from the channel is an event; an error value ends the
// subscription with that error. The function should stop sending once ctx is
// done.
type SubscribeFunc func(ctx context.Context, p ResolveParams) (<-chan any, error)

// TypeResolverFunc names the concrete object type of an interface or union
// value. It is registered under the "__resolveType" key.
type TypeResolverFunc func(ctx context.Context, value any) (string, error)

// Field is a field resolver with its own subscribe handler. Two Fields merge
// member by member.
type Field struct {
	Resolve   ResolverFunc
	Subscribe SubscribeFunc
}

// Scalar customises serialization of a custom scalar type. It is registered
// as the top level value of the scalar's name.
type Scalar struct {
	Serialize func(value any) (any, error)
}

// mergeResolvers returns the deep merge of left and right. Where both sides
// hold a mapping the merge recurses, where both hold a Field the members are
// merged, otherwise the right side wins. Neither input is modified and the
// result shares no mappings with them.
func mergeResolvers(left, right Resolvers) Resolvers {
	return deepMerge(left, right)
}

func deepMerge(left, right map[string]any) Resolvers {
	out := make(Resolvers, len(left)+len(right))
	for k, v := range left {
		out[k] = cloneNode(v)
	}
	for k, rv := range right {
		if lv, ok := out[k]; ok {
			if lm, ok := asMapping(lv); ok {
				if rm, ok := asMapping(rv); ok {
					out[k] = deepMerge(lm, rm)
					continue
				}
			}
			if lf, ok := asField(lv); ok {
				if rf, ok := asField(rv); ok {
					out[k] = lf.merge(rf)
					continue
				}
			}
		}
		out[k] = cloneNode(rv)
	}
	return out
}

func cloneNode(v any) any {
	if m, ok := asMapping(v); ok {
		return deepMerge(nil, m)
	}
	if f, ok := v.(*Field); ok && f != nil {
		return *f
	}
	return v
}

func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Resolvers:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func asField(v any) (Field, bool) {
	switch f := v.(type) {
	case Field:
		return f, true
	case *Field:
		if f != nil {
			return *f, true
		}
	}
	return Field{}, false
}

func (f Field) merge(later Field) Field {
	if later.Resolve != nil {
		f.Resolve = later.Resolve
	}
	if later.Subscribe != nil {
		f.Subscribe = later.Subscribe
	}
	return f
}

// fieldFromLeaf interprets a field-level leaf of the resolver tree.
func fieldFromLeaf(v any) (Field, bool) {
	switch f := v.(type) {
	case ResolverFunc:
		return Field{Resolve: f}, f != nil
	case func(context.Context, ResolveParams) (any, error):
		return Field{Resolve: f}, f != nil
	case SubscribeFunc:
		return Field{Subscribe: f}, f != nil
	case func(context.Context, ResolveParams) (<-chan any, error):
		return Field{Subscribe: f}, f != nil
	}
	return asField(v)
}

func typeResolverFromLeaf(v any) (TypeResolverFunc, bool) {
	switch f := v.(type) {
	case TypeResolverFunc:
		return f, f != nil
	case func(context.Context, any) (string, error):
		return f, f != nil
	}
	return nil, false
}

func scalarFromLeaf(v any) (Scalar, bool) {
	switch s := v.(type) {
	case Scalar:
		return s, true
	case *Scalar:
		if s != nil {
			return *s, true
		}
	}
	return Scalar{}, false
}
