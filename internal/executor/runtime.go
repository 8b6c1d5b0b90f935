package executor

import (
	"context"
)

// Runtime is everything the Executor needs from its host: field values,
// concrete types of abstract values, leaf serialization and subscription
// streams. The modgraph package implements it on top of module resolvers.
//
// Execution is breadth first. Fields without a resolver (Async false) are
// resolved with ResolveSync while their parent's selection set is expanded.
// Resolver-backed fields are queued instead, and every field queued at one
// depth goes to the runtime in a single BatchResolveAsync call. Completing
// that batch may queue the next depth. Fields below a position that a
// Non-Null violation already replaced with null are never handed out.
//
// Any error a method returns becomes a located error in the result; the
// affected field is null and, when its type is Non-Null, so is its nearest
// nullable ancestor. An error implementing ExtendedError contributes its
// extensions.
//
// Arguments are coerced before they reach the runtime. Implementations must
// not modify source or args, and must be safe to use from concurrent
// executions.
type Runtime interface {
	// ResolveSync returns the value of a field that has no resolver, usually
	// read from source. (nil, nil) is a null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of resolver-backed fields.
	// results[i] belongs to tasks[i]; missing trailing results are treated as
	// errors of their tasks.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the object type of value, which was returned for
	// the interface or union abstractType.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue turns a scalar or enum value into its JSON-ready
	// form.
	SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error)

	// Subscribe opens the source stream of a root subscription field. Each
	// value received is one event; an error value ends the subscription with
	// that error. The stream should stop once ctx is done.
	Subscribe(ctx context.Context, objectType string, field string, source any, args map[string]any) (<-chan any, error)
}

// AsyncResolveTask is one resolver-backed field of a batch.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	// Source is the parent value, or the root value for root fields.
	Source any
	Args   map[string]any
	// Path is the response path of the field.
	Path Path
}

// AsyncResolveResult is the raw value of one task before completion.
type AsyncResolveResult struct {
	Value any
	Error error
}
