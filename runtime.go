package modgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	executor "github.com/hanpama/modgraph/internal/executor"
	schema "github.com/hanpama/modgraph/internal/schema"
)

type contextValueKey struct{}

// withContextValue stores the merged request context value in ctx.
func withContextValue(ctx context.Context, v ContextValue) context.Context {
	return context.WithValue(ctx, contextValueKey{}, v)
}

// ContextValueFrom returns the ContextValue of the operation ctx belongs to.
// Type resolvers and scalar serializers can use it to reach request state.
func ContextValueFrom(ctx context.Context) ContextValue {
	v, _ := ctx.Value(contextValueKey{}).(ContextValue)
	return v
}

// runtime implements executor.Runtime over the bound resolver tree.
type runtime struct {
	exec *executable
}

var _ executor.Runtime = (*runtime)(nil)

// ResolveSync serves fields without a resolve function by projecting the
// parent value.
func (r *runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return defaultResolve(source, field), nil
}

// BatchResolveAsync calls the resolve function of every task in order. A
// panicking resolver fails only its own task.
func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	cv := ContextValueFrom(ctx)
	for i, task := range tasks {
		f, ok := r.exec.field(task.ObjectType, task.Field)
		if !ok || f.Resolve == nil {
			results[i] = executor.AsyncResolveResult{Value: defaultResolve(task.Source, task.Field)}
			continue
		}
		params := ResolveParams{
			Source:  task.Source,
			Args:    task.Args,
			Context: cv,
			Info: ResolveInfo{
				ParentType: task.ObjectType,
				FieldName:  task.Field,
				Path:       toResponsePath(task.Path),
			},
		}
		v, err := callResolver(ctx, f.Resolve, params)
		results[i] = executor.AsyncResolveResult{Value: v, Error: err}
	}
	return results
}

func callResolver(ctx context.Context, fn ResolverFunc, p ResolveParams) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, fmt.Errorf("resolver %s.%s panicked: %v", p.Info.ParentType, p.Info.FieldName, rec)
		}
	}()
	return fn(ctx, p)
}

// ResolveType uses the type's __resolveType function, falling back to the
// __typename key of map values.
func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if fn, ok := r.exec.typeResolvers[abstractType]; ok {
		return fn(ctx, value)
	}
	if name, ok := defaultResolve(value, "__typename").(string); ok && name != "" {
		return name, nil
	}
	return "", fmt.Errorf("abstract type %s must resolve to an object type: add %s.__resolveType or a __typename key to the value", abstractType, abstractType)
}

// SerializeLeafValue applies custom scalar serializers and the built-in
// scalar and enum coercion rules.
func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if s, ok := r.exec.scalars[typeName]; ok && s.Serialize != nil {
		return s.Serialize(value)
	}
	value = indirect(value)
	if value == nil {
		return nil, nil
	}
	switch typeName {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		return serializeString(value)
	case "Boolean":
		return serializeBoolean(value)
	case "ID":
		return serializeID(value)
	}
	if def := r.exec.schema.Types[typeName]; def != nil && def.Kind == schema.TypeKindEnum {
		return serializeEnum(def, value)
	}
	return value, nil
}

// Subscribe opens the source stream of a subscription root field.
func (r *runtime) Subscribe(ctx context.Context, objectType string, field string, source any, args map[string]any) (ch <-chan any, err error) {
	f, ok := r.exec.field(objectType, field)
	if !ok || f.Subscribe == nil {
		return nil, fmt.Errorf("subscription field %s.%s has no subscribe resolver", objectType, field)
	}
	defer func() {
		if rec := recover(); rec != nil {
			ch, err = nil, fmt.Errorf("subscribe resolver %s.%s panicked: %v", objectType, field, rec)
		}
	}()
	return f.Subscribe(ctx, ResolveParams{
		Source:  source,
		Args:    args,
		Context: ContextValueFrom(ctx),
		Info:    ResolveInfo{ParentType: objectType, FieldName: field, Path: []any{field}},
	})
}

func toResponsePath(p executor.Path) []any {
	out := make([]any, len(p))
	for i, elem := range p {
		out[i] = elem
	}
	return out
}

// defaultResolve reads field from source: a map key, or an exported struct
// field matched by its json tag or case-insensitively by name. Pointers are
// followed; a nil source yields nil.
func defaultResolve(source any, field string) any {
	if source == nil {
		return nil
	}
	switch s := source.(type) {
	case map[string]any:
		return s[field]
	case Resolvers:
		return s[field]
	case ContextValue:
		return s[field]
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(field).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Struct:
		if v, ok := structField(rv, field); ok {
			return v.Interface()
		}
	}
	return nil
}

func structField(rv reflect.Value, field string) (reflect.Value, bool) {
	t := rv.Type()
	fallback := -1
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == field {
				return rv.Field(i), true
			}
			if name != "" {
				continue
			}
		}
		if fallback < 0 && strings.EqualFold(sf.Name, field) {
			fallback = i
		}
	}
	if fallback >= 0 {
		return rv.Field(fallback), true
	}
	return reflect.Value{}, false
}

func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func serializeInt(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int(n), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", f)
		}
		return int(f), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		if n, err := strconv.ParseInt(rv.String(), 10, 32); err == nil {
			return int(n), nil
		}
	}
	if n, ok := value.(json.Number); ok {
		return serializeInt(string(n))
	}
	return nil, fmt.Errorf("Int cannot represent value: %v", value)
}

func serializeFloat(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %v", f)
		}
		return f, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	case reflect.String:
		if f, err := strconv.ParseFloat(rv.String(), 64); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("Float cannot represent value: %v", value)
}

func serializeString(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(value), nil
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v", value)
}

func serializeBoolean(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", value)
}

func serializeID(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v", value)
}

func serializeEnum(def *schema.Type, value any) (any, error) {
	var name string
	if s, ok := value.(fmt.Stringer); ok {
		name = s.String()
	} else if rv := reflect.ValueOf(value); rv.Kind() == reflect.String {
		name = rv.String()
	} else {
		return nil, fmt.Errorf("Enum %q cannot represent value: %v", def.Name, value)
	}
	for _, ev := range def.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("Enum %q cannot represent value: %q", def.Name, name)
}
