package executor

import (
	"fmt"
	"strconv"
	"strings"

	language "github.com/hanpama/modgraph/internal/language"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// coerceVariableValues coerces variable values according to their types
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	if variableValues == nil {
		variableValues = make(map[string]any)
	}
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues[strings.TrimPrefix(name, "$")]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = astValueToGo(varDef.DefaultValue)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := coerceValue(sch, val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces the arguments of the first field in fields
// against fieldDef. Failures are recorded as errors located at the field;
// the argument is then left out.
func (s *executionState) coerceArgumentValues(fieldDef *schema.Field, fields []*language.Field, path Path) map[string]any {
	coerced := make(map[string]any, len(fieldDef.Arguments))
	failed := map[string]bool{}
	for _, arg := range fields[0].Arguments {
		argDef := fieldDef.Argument(arg.Name)
		if argDef == nil {
			continue
		}
		val := valueFromASTWithVars(arg.Value, s.variables)
		cv, err := coerceValue(s.schema, val, argDef.Type)
		if err != nil {
			s.addFieldError(fmt.Errorf("argument '%s' cannot be coerced: %v", arg.Name, err), fields, path)
			failed[arg.Name] = true
			continue
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok || failed[argDef.Name] {
			continue
		}
		switch {
		case argDef.DefaultValue != nil:
			coerced[argDef.Name] = argDef.DefaultValue
		case schema.IsNonNull(argDef.Type):
			s.addFieldError(fmt.Errorf("argument '%s' of required type was not provided", argDef.Name), fields, path)
		}
	}
	return coerced
}

// valueFromASTWithVars converts an AST value to a runtime value with variable substitution
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		name := value.Raw
		if v, ok := variableValues[name]; ok {
			return v
		}
		if v, ok := variableValues[strings.TrimPrefix(name, "$")]; ok {
			return v
		}
		return nil
	default:
		return astValueToGo(value)
	}
}

// astValueToGo converts an AST value to a Go value
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}

// coerceValue coerces a value to the specified GraphQL type
func coerceValue(sch *schema.Schema, value any, targetType *schema.TypeRef) (any, error) {
	// Handle Non-Null wrapper
	if schema.IsNonNull(targetType) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(sch, value, schema.Unwrap(targetType))
	}

	// Handle null for nullable types
	if value == nil {
		return nil, nil
	}

	// Handle List wrapper
	if schema.IsList(targetType) {
		return coerceListValue(sch, value, targetType)
	}

	// Get the named type for scalar coercion
	namedType := schema.GetNamedType(targetType)

	// Coerce based on target scalar type
	switch namedType {
	case "Int":
		return coerceToInt(value)
	case "Float":
		return coerceToFloat(value)
	case "String":
		return coerceToString(value)
	case "Boolean":
		return coerceToBoolean(value)
	case "ID":
		return coerceToID(value)
	}

	var named *schema.Type
	if sch != nil {
		named = sch.Types[namedType]
	}
	if named == nil {
		// Custom scalars and unknown types pass through
		return value, nil
	}
	switch named.Kind {
	case schema.TypeKindEnum:
		return coerceToEnum(named, value)
	case schema.TypeKindInputObject:
		return coerceInputObject(sch, named, value)
	default:
		return value, nil
	}
}

func coerceToEnum(enum *schema.Type, value any) (any, error) {
	name, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", value, value, enum.Name)
	}
	for _, v := range enum.EnumValues {
		if v.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("value '%s' does not exist in enum %s", name, enum.Name)
}

func coerceInputObject(sch *schema.Schema, input *schema.Type, value any) (any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to input object %s", value, value, input.Name)
	}
	known := make(map[string]struct{}, len(input.InputFields))
	coerced := make(map[string]any, len(fields))
	for _, def := range input.InputFields {
		known[def.Name] = struct{}{}
		v, present := fields[def.Name]
		if !present {
			if def.DefaultValue != nil {
				coerced[def.Name] = def.DefaultValue
			} else if schema.IsNonNull(def.Type) {
				return nil, fmt.Errorf("required field '%s' of %s was not provided", def.Name, input.Name)
			}
			continue
		}
		cv, err := coerceValue(sch, v, def.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s' of %s: %w", def.Name, input.Name, err)
		}
		coerced[def.Name] = cv
	}
	for name := range fields {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("field '%s' is not defined by %s", name, input.Name)
		}
	}
	if input.OneOf {
		if len(coerced) != 1 {
			return nil, fmt.Errorf("exactly one field of %s must be provided", input.Name)
		}
		for name, v := range coerced {
			if v == nil {
				return nil, fmt.Errorf("field '%s' of %s must not be null", name, input.Name)
			}
		}
	}
	return coerced, nil
}

// coerceListValue coerces a value to a list
func coerceListValue(sch *schema.Schema, value any, listType *schema.TypeRef) (any, error) {
	// If already a slice, coerce each item
	if slice, ok := value.([]any); ok {
		innerType := schema.Unwrap(listType)
		coercedSlice := make([]any, len(slice))
		for i, item := range slice {
			coercedItem, err := coerceValue(sch, item, innerType)
			if err != nil {
				return nil, err
			}
			coercedSlice[i] = coercedItem
		}
		return coercedSlice, nil
	}

	// Single value becomes a list of one
	innerType := schema.Unwrap(listType)
	coercedItem, err := coerceValue(sch, value, innerType)
	if err != nil {
		return nil, err
	}
	return []any{coercedItem}, nil
}

// Basic scalar coercion functions - improved
func coerceToInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case float32:
		return int(v), nil
	case string:
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
}

func coerceToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if floatVal, err := strconv.ParseFloat(v, 64); err == nil {
			return floatVal, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

func coerceToString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

func coerceToID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}

// typeRefFromAST converts a variable definition's type.
func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}
