// Package executor implements a breadth-first, batch-friendly GraphQL executor.
// Host code plugs in through the Runtime interface, which covers synchronous
// resolution, depth-wise batching of resolver-backed fields, abstract-type
// resolution, leaf serialization and subscription source streams.
//
// # Preparation
//
// Before execution, the executor:
//  1. Selects the operation, by name or by uniqueness when unnamed.
//  2. Coerces the provided variables against the operation's variable
//     definitions, including enum and input object values. Errors here stop
//     execution.
//  3. Looks up the root object type for the operation kind.
//
// # Execution Model
//
// Every field is either synchronous or asynchronous, as declared by
// schema.Field.Async:
//
//   - Synchronous fields project the parent value and are executed immediately
//     via Runtime.ResolveSync. Their object results keep expanding in place, so
//     purely synchronous descents never add a depth.
//   - Asynchronous fields are backed by a resolver. They are queued while the
//     current depth is expanded and resolved with exactly one call to
//     Runtime.BatchResolveAsync per depth.
//
// After a batch returns, each result is completed. Object results are
// expanded, and the asynchronous fields found below them form the next batch.
// For a query whose asynchronous depth is d, BatchResolveAsync is invoked
// exactly d times.
//
// # Value Completion
//
//   - Non-Null: complete the inner type; a null result is a located error and
//     the null propagates to the parent.
//   - List: complete every element with an index-aware path. A null element of
//     a Non-Null item type nullifies the whole list.
//   - Leaf (Scalar/Enum): Runtime.SerializeLeafValue.
//   - Abstract (Interface/Union): Runtime.ResolveType names the concrete object
//     type, which must exist in the schema, then the value completes as that
//     object.
//   - Object: collect subfields, honoring @skip, @include and fragment type
//     conditions. A condition matches the object type itself, any interface it
//     implements and any union it belongs to.
//
// A null in a Non-Null position, synchronous or not, nulls the nearest
// enclosing nullable position: a nullable field, a nullable list item, or
// the whole data when none exists. Queued fields below a nulled position are
// dropped before the next batch.
//
// # Errors and Partial Success
//
// Errors are accumulated as GraphQL errors carrying the message, the
// locations of the selections involved and the response path. Resolver
// errors implementing ExtendedError add their extensions. Batch results are
// independent, so one failing element does not affect the others.
//
// # Subscriptions
//
// Executor.Subscribe selects the single root field of a subscription
// operation and asks Runtime.Subscribe for its source stream. Each event read
// from the stream becomes the root value of one ordinary execution of the
// operation, and the result is passed to the caller's callback before the next
// event is read. The stream ends when the channel is closed, when it delivers
// an error value, or when the context is done.
package executor
