package executor

import (
	"context"

	schema "github.com/hanpama/modgraph/internal/schema"
)

func newSchemaWithQueryType(query *schema.Type, additional ...*schema.Type) *schema.Schema {
	sch := schema.NewSchema("")
	if query != nil {
		sch.SetQueryType(query.Name)
		sch.AddType(query)
	}
	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
		sch.AddType(newScalarType(name))
	}
	for _, t := range additional {
		sch.AddType(t)
	}
	return sch
}

func newObjectType(name string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, "")
	for _, field := range fields {
		t.AddField(field)
	}
	return t
}

func newScalarType(name string) *schema.Type {
	return schema.NewType(name, schema.TypeKindScalar, "")
}

func newAbstractType(name string, kind schema.TypeKind, possible ...string) *schema.Type {
	t := schema.NewType(name, kind, "")
	for _, p := range possible {
		t.AddPossibleType(p)
	}
	return t
}

func syncField(name string, typ *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", typ)
}

func asyncField(name string, typ *schema.TypeRef) *schema.Field {
	return schema.NewField(name, "", typ).SetAsync(true)
}

// project returns a resolver reading key from a map source.
func project(key string) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		if m, ok := source.(map[string]any); ok {
			return m[key], nil
		}
		return nil, nil
	}
}
