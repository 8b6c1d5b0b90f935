package executor

import (
	"context"
	"fmt"

	language "github.com/hanpama/modgraph/internal/language"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// executionState is the per-execution state of one operation run.
type executionState struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	document  *language.QueryDocument
	variables map[string]any

	errors []GraphQLError
	// queued holds the resolver-backed fields of the depth being expanded.
	queued []queuedField
	// nulled holds the roots of subtrees replaced by null after a Non-Null
	// violation. An empty path means the whole data.
	nulled []Path
}

// queuedField is a resolver-backed field waiting for the next batch.
type queuedField struct {
	task      AsyncResolveTask
	fieldType *schema.TypeRef
	fields    []*language.Field
	// nullable is the nearest position at or above the field's parent that
	// may hold null. A Non-Null violation of this field nulls it.
	nullable Path
}

// asyncPending marks a response slot whose value arrives with a later batch.
type asyncPending struct{}

func (e *Executor) newState(ctx context.Context, document *language.QueryDocument, variables map[string]any) *executionState {
	return &executionState{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		document:  document,
		variables: variables,
		errors:    []GraphQLError{},
	}
}

// execute runs the operation: the root selection set expands in place,
// then every depth of queued resolver-backed fields is resolved with one
// BatchResolveAsync call and completed, which may queue the next depth.
func (s *executionState) execute(op *preparedOperation, rootValue any) *ExecutionResult {
	data := s.executeSelectionSet(op.rootType, op.definition.SelectionSet, rootValue, Path{}, Path{})
	for len(s.queued) > 0 && !s.dataNulled() {
		batch, results := s.flush()
		for i := range batch {
			s.completeQueued(data, batch[i], results[i])
		}
	}
	if data == nil || s.dataNulled() {
		return &ExecutionResult{Data: nil, Errors: s.errors}
	}
	return &ExecutionResult{Data: data, Errors: s.errors}
}

// executeSelectionSet executes the fields selected on objectType at path.
// It returns nil when a Non-Null field came out null, which makes the
// object itself null.
func (s *executionState) executeSelectionSet(objectType *schema.Type, selections language.SelectionSet, source any, path, nullable Path) map[string]any {
	out := make(map[string]any)
	for _, group := range s.collectFields(objectType, selections) {
		fieldPath := appendPath(path, group.responseName)
		if group.name() == "__typename" {
			out[group.responseName] = objectType.Name
			continue
		}
		def := group.definition(objectType)
		if def == nil {
			s.addFieldError(fmt.Errorf("Cannot query field '%s' on type '%s'", group.name(), objectType.Name), group.fields, fieldPath)
			continue
		}

		value := s.executeField(objectType, def, group, source, fieldPath, nullable)
		if isNullish(value) {
			if schema.IsNonNull(def.Type) {
				s.markNulled(path)
				return nil
			}
			value = nil
		}
		out[group.responseName] = value
	}
	return out
}

// executeField resolves and completes a synchronous field, or queues a
// resolver-backed one and returns asyncPending.
func (s *executionState) executeField(objectType *schema.Type, def *schema.Field, group fieldGroup, source any, path, nullable Path) any {
	args := s.coerceArgumentValues(def, group.fields, path)
	if def.Async {
		s.queued = append(s.queued, queuedField{
			task: AsyncResolveTask{
				ObjectType: objectType.Name,
				Field:      def.Name,
				Source:     source,
				Args:       args,
				Path:       path,
			},
			fieldType: def.Type,
			fields:    group.fields,
			nullable:  nullable,
		})
		return asyncPending{}
	}

	value, err := s.runtime.ResolveSync(s.ctx, objectType.Name, def.Name, source, args)
	if err != nil {
		s.addFieldError(err, group.fields, path)
		value = nil
	}
	return s.completeValue(def.Type, group.fields, value, path, nullable)
}

// flush hands the queued fields that are still live to the runtime as one
// batch. A short result slice is padded with errors.
func (s *executionState) flush() ([]queuedField, []AsyncResolveResult) {
	live := make([]queuedField, 0, len(s.queued))
	for _, q := range s.queued {
		if !s.isNulled(q.task.Path) {
			live = append(live, q)
		}
	}
	s.queued = nil
	if len(live) == 0 {
		return nil, nil
	}

	tasks := make([]AsyncResolveTask, len(live))
	for i, q := range live {
		tasks[i] = q.task
	}
	results := s.runtime.BatchResolveAsync(s.ctx, tasks)
	if len(results) < len(live) {
		padded := make([]AsyncResolveResult, len(live))
		copy(padded, results)
		for i := len(results); i < len(live); i++ {
			padded[i] = AsyncResolveResult{Error: fmt.Errorf("runtime returned no result for %s.%s", live[i].task.ObjectType, live[i].task.Field)}
		}
		results = padded
	}
	return live, results
}

// completeQueued completes one batch result and writes it into data. A
// null for a Non-Null field nulls the field's nearest nullable ancestor.
func (s *executionState) completeQueued(data map[string]any, q queuedField, res AsyncResolveResult) {
	path := q.task.Path
	if s.isNulled(path) {
		return
	}
	value := res.Value
	if res.Error != nil {
		s.addFieldError(res.Error, q.fields, path)
		value = nil
	}

	completed := s.completeValue(q.fieldType, q.fields, value, path, q.nullable)
	if isNullish(completed) {
		if schema.IsNonNull(q.fieldType) {
			s.markNulled(q.nullable)
			writeAtPath(data, q.nullable, nil)
			return
		}
		completed = nil
	}
	writeAtPath(data, path, completed)
}

func (s *executionState) addFieldError(err error, fields []*language.Field, path Path) {
	s.errors = append(s.errors, fieldError(err, fields, path))
}

func (s *executionState) hasErrorAt(path Path) bool {
	for _, e := range s.errors {
		if pathEqual(e.Path, path) {
			return true
		}
	}
	return false
}
