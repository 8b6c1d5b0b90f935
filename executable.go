package modgraph

import (
	"fmt"
	"sort"
	"strings"

	language "github.com/hanpama/modgraph/internal/language"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// executable is a schema with its resolvers bound.
type executable struct {
	schema        *schema.Schema
	fields        map[string]map[string]Field
	typeResolvers map[string]TypeResolverFunc
	scalars       map[string]Scalar
}

// buildExecutable validates the bundle's type definitions and binds its
// resolver tree. Fields backed by a resolve function are marked async so
// the executor batches them.
func buildExecutable(b *Bundle) (*executable, error) {
	sources := make([]*language.Source, len(b.TypeDefs))
	for i, def := range b.TypeDefs {
		sources[i] = language.NewSource(b.sourceName(i), def)
	}
	sch, err := schema.Build(sources...)
	if err != nil {
		return nil, err
	}

	exec := &executable{
		schema:        sch,
		fields:        make(map[string]map[string]Field),
		typeResolvers: make(map[string]TypeResolverFunc),
		scalars:       make(map[string]Scalar),
	}
	for _, typeName := range sortedKeys(b.Resolvers) {
		if err := exec.bindType(typeName, b.Resolvers[typeName]); err != nil {
			return nil, err
		}
	}
	exec.inheritInterfaceFields()
	return exec, nil
}

// inheritInterfaceFields copies resolvers bound on interface fields to the
// object types implementing the interface, unless the object binds the same
// field itself. With several interfaces, the first one listed wins.
func (e *executable) inheritInterfaceFields() {
	for _, typeName := range sortedKeys(e.schema.Types) {
		def := e.schema.Types[typeName]
		if def.Kind != schema.TypeKindObject {
			continue
		}
		for _, iface := range def.Interfaces {
			for fieldName, f := range e.fields[iface] {
				if _, own := e.fields[typeName][fieldName]; own {
					continue
				}
				fieldDef := def.Field(fieldName)
				if fieldDef == nil {
					continue
				}
				if e.fields[typeName] == nil {
					e.fields[typeName] = make(map[string]Field)
				}
				e.fields[typeName][fieldName] = f
				if f.Resolve != nil {
					fieldDef.SetAsync(true)
				}
			}
		}
	}
}

func (e *executable) bindType(typeName string, node any) error {
	def := e.schema.Types[typeName]
	if def == nil || strings.HasPrefix(typeName, "__") {
		return fmt.Errorf("%s defined in resolvers, but not in schema", typeName)
	}

	if scalar, ok := scalarFromLeaf(node); ok {
		if def.Kind != schema.TypeKindScalar {
			return fmt.Errorf("%s has a scalar resolver, but is %s type", typeName, kindPhrase[def.Kind])
		}
		e.scalars[typeName] = scalar
		return nil
	}

	fields, ok := asMapping(node)
	if !ok {
		return fmt.Errorf("resolvers for %s must be a map of field resolvers or a Scalar", typeName)
	}
	for _, key := range sortedKeys(fields) {
		leaf := fields[key]
		if key == "__resolveType" {
			if def.Kind != schema.TypeKindInterface && def.Kind != schema.TypeKindUnion {
				return fmt.Errorf("%s.__resolveType defined in resolvers, but %s is not an interface or union", typeName, typeName)
			}
			fn, ok := typeResolverFromLeaf(leaf)
			if !ok {
				return fmt.Errorf("resolver %s.__resolveType must be a function", typeName)
			}
			e.typeResolvers[typeName] = fn
			continue
		}
		if strings.HasPrefix(key, "__") {
			continue
		}

		var fieldDef *schema.Field
		if def.Kind == schema.TypeKindObject || def.Kind == schema.TypeKindInterface {
			fieldDef = def.Field(key)
		}
		if fieldDef == nil {
			return fmt.Errorf("%s.%s defined in resolvers, but not in schema", typeName, key)
		}
		f, ok := fieldFromLeaf(leaf)
		if !ok {
			return fmt.Errorf("resolver %s.%s must be a function or a Field", typeName, key)
		}
		if e.fields[typeName] == nil {
			e.fields[typeName] = make(map[string]Field)
		}
		e.fields[typeName][key] = f
		if f.Resolve != nil {
			fieldDef.SetAsync(true)
		}
	}
	return nil
}

var kindPhrase = map[schema.TypeKind]string{
	schema.TypeKindObject:      "an object",
	schema.TypeKindInterface:   "an interface",
	schema.TypeKindUnion:       "a union",
	schema.TypeKindEnum:        "an enum",
	schema.TypeKindInputObject: "an input object",
	schema.TypeKindScalar:      "a scalar",
}

func (e *executable) field(typeName, fieldName string) (Field, bool) {
	f, ok := e.fields[typeName][fieldName]
	return f, ok
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
