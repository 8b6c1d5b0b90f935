package executor

import (
	"fmt"
	"reflect"

	language "github.com/hanpama/modgraph/internal/language"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// completeValue turns a resolved value into its response shape. nullable is
// the nearest enclosing position that may hold null; a nullable type makes
// path itself that position for everything below it.
//
// A null for a Non-Null type is an error at path unless one was already
// recorded there; a null produced by completing the inner value propagates
// without a second error.
func (s *executionState) completeValue(t *schema.TypeRef, fields []*language.Field, value any, path, nullable Path) any {
	if schema.IsNonNull(t) {
		if isNullish(value) {
			if !s.hasErrorAt(path) {
				s.addFieldError(fmt.Errorf("Cannot return null for non-nullable field %s", pathToString(path)), fields, path)
			}
			return nil
		}
		return s.completeInner(schema.Unwrap(t), fields, value, path, nullable)
	}
	if isNullish(value) {
		return nil
	}
	return s.completeInner(t, fields, value, path, path)
}

func (s *executionState) completeInner(t *schema.TypeRef, fields []*language.Field, value any, path, nullable Path) any {
	if schema.IsList(t) {
		return s.completeList(t, fields, value, path, nullable)
	}

	name := schema.GetNamedType(t)
	typ := s.schema.Types[name]
	if typ == nil {
		s.addFieldError(fmt.Errorf("Unknown type: %s", name), fields, path)
		return nil
	}
	switch typ.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		out, err := s.runtime.SerializeLeafValue(s.ctx, name, value)
		if err != nil {
			s.addFieldError(err, fields, path)
			return nil
		}
		return out
	case schema.TypeKindObject:
		return s.completeObject(typ, fields, value, path, nullable)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return s.completeAbstract(typ, fields, value, path, nullable)
	}
	s.addFieldError(fmt.Errorf("Cannot complete value of unexpected type: %s", typ.Kind), fields, path)
	return nil
}

// completeList completes every item with an index path. A null item of a
// Non-Null item type makes the whole list null.
func (s *executionState) completeList(t *schema.TypeRef, fields []*language.Field, value any, path, nullable Path) any {
	items, ok := listItems(value)
	if !ok {
		s.addFieldError(fmt.Errorf("Expected list value, got %T", value), fields, path)
		return nil
	}
	itemType := schema.Unwrap(t)
	out := make([]any, len(items))
	for i, item := range items {
		v := s.completeValue(itemType, fields, item, appendPath(path, i), nullable)
		if isNullish(v) {
			if schema.IsNonNull(itemType) {
				s.markNulled(path)
				return nil
			}
			v = nil
		}
		out[i] = v
	}
	return out
}

func (s *executionState) completeObject(objectType *schema.Type, fields []*language.Field, value any, path, nullable Path) any {
	group := fieldGroup{fields: fields}
	result := s.executeSelectionSet(objectType, group.subselection(), value, path, nullable)
	if result == nil {
		return nil
	}
	return result
}

// completeAbstract asks the runtime for the concrete type of value, which
// must be an object type that belongs to the abstract type.
func (s *executionState) completeAbstract(abstractType *schema.Type, fields []*language.Field, value any, path, nullable Path) any {
	typeName, err := s.runtime.ResolveType(s.ctx, abstractType.Name, value)
	if err != nil {
		s.addFieldError(err, fields, path)
		return nil
	}
	objectType := s.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		s.addFieldError(fmt.Errorf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractType.Name, typeName), fields, path)
		return nil
	}
	return s.completeObject(objectType, fields, value, path, nullable)
}

// listItems returns the elements of any slice or array value.
func listItems(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
