package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/modgraph/internal/language"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// Path is a response path: field response names and list indices.
type Path []PathElement

// PathElement is a string response name or an int list index.
type PathElement any

// Executor executes operations of one schema against a Runtime. It holds no
// per-request state and may be shared between goroutines.
type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// ExecuteRequest executes a query or mutation operation. Preparation failures
// (unknown operation, variable coercion) are reported as result errors.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	op, err := e.prepare(document, operationName, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	return e.newState(ctx, document, op.variables).execute(op, initialValue)
}

// Subscribe executes a subscription operation. The single root field's source
// stream is obtained from Runtime.Subscribe; every event read from it is used
// as the root value of one execution of the operation, and the result is
// handed to yield before the next event is read.
//
// Subscribe returns nil once the stream is closed, the error itself when the
// stream delivers an error value, and ctx.Err() when ctx is done. Errors
// raised before the stream is established are returned without calling yield.
func (e *Executor) Subscribe(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
	yield func(*ExecutionResult),
) error {
	op, err := e.prepare(document, operationName, variableValues)
	if err != nil {
		return err
	}
	if op.definition.Operation != language.Subscription {
		return fmt.Errorf("operation is a %s, not a subscription", op.definition.Operation)
	}

	setup := e.newState(ctx, document, op.variables)
	grouped := setup.collectFields(op.rootType, op.definition.SelectionSet)
	if len(grouped) != 1 {
		return fmt.Errorf("subscription must select exactly one top level field, got %d", len(grouped))
	}
	root := grouped[0]
	fieldDef := root.definition(op.rootType)
	if fieldDef == nil {
		return fmt.Errorf("Cannot query field '%s' on type '%s'", root.name(), op.rootType.Name)
	}
	args := setup.coerceArgumentValues(fieldDef, root.fields, Path{root.responseName})
	if len(setup.errors) > 0 {
		return setup.errors[0]
	}

	stream, err := e.runtime.Subscribe(ctx, op.rootType.Name, root.name(), initialValue, args)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-stream:
			if !ok {
				return nil
			}
			if err, isErr := event.(error); isErr {
				return err
			}
			yield(e.newState(ctx, document, op.variables).execute(op, event))
		}
	}
}

// preparedOperation is an operation selected from a document with its
// variables coerced and its root type looked up.
type preparedOperation struct {
	definition *language.OperationDefinition
	rootType   *schema.Type
	variables  map[string]any
}

func (e *Executor) prepare(document *language.QueryDocument, operationName string, variableValues map[string]any) (*preparedOperation, error) {
	operation := selectOperation(document, operationName)
	if operation == nil {
		return nil, GraphQLError{Message: "operation not found"}
	}

	variables, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return nil, GraphQLError{Message: err.Error()}
	}

	rootType := e.rootType(operation.Operation)
	if rootType == nil {
		return nil, GraphQLError{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}
	}
	return &preparedOperation{definition: operation, rootType: rootType, variables: variables}, nil
}

func (e *Executor) rootType(op language.Operation) *schema.Type {
	return e.schema.RootType(string(op))
}

// selectOperation picks the named operation, or the only one when the name
// is empty.
func selectOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0]
		}
		return nil
	}
	return document.Operations.ForName(operationName)
}
