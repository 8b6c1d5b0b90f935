package modgraph

import (
	"context"
	"fmt"
	"time"

	eventbus "github.com/hanpama/modgraph/internal/eventbus"
	events "github.com/hanpama/modgraph/internal/events"
	executor "github.com/hanpama/modgraph/internal/executor"
	introspection "github.com/hanpama/modgraph/internal/introspection"
	language "github.com/hanpama/modgraph/internal/language"
	reqid "github.com/hanpama/modgraph/internal/reqid"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// Result is the outcome of one operation execution.
type Result = executor.ExecutionResult

// Error is a located execution error inside a Result.
type Error = executor.GraphQLError

// Location is a line and column in the operation document.
type Location = executor.Location

// ExtendedError is implemented by resolver errors that add entries to the
// "extensions" member of their Error.
type ExtendedError = executor.ExtendedError

// Options configures a single Run or Subscribe call.
type Options struct {
	// ContextValue is merged under the values built by the modules' context
	// functions: a key produced by a module replaces the same key here.
	ContextValue ContextValue
	// ContextArg is passed to every module's context function.
	ContextArg     any
	RootValue      any
	OperationName  string
	VariableValues map[string]any
}

// Executor runs operations against the schema composed from a set of
// modules. It is read-only after construction and safe for concurrent use.
type Executor struct {
	bundle *Bundle
	schema *schema.Schema
	engine *executor.Executor
}

// NewExecutor compiles modules and builds an executable schema from them.
func NewExecutor(modules ...Module) (*Executor, error) {
	return NewExecutorFromBundle(Compile(modules...))
}

// NewExecutorFromBundle builds an executable schema from a compiled bundle.
// Schema errors and resolvers that do not match the schema are reported
// here, once.
func NewExecutorFromBundle(b *Bundle) (*Executor, error) {
	exec, err := buildExecutable(b)
	if err != nil {
		return nil, err
	}
	wrapped := introspection.Wrap(&runtime{exec: exec}, exec.schema)
	return &Executor{
		bundle: b,
		schema: exec.schema,
		engine: executor.NewExecutor(wrapped.Runtime, wrapped.Schema),
	}, nil
}

// Bundle returns the bundle the executor was built from.
func (e *Executor) Bundle() *Bundle { return e.bundle }

// SDL renders the composed schema.
func (e *Executor) SDL() string { return schema.Render(e.schema) }

// request is a parsed operation with its merged context value.
type request struct {
	document      *language.QueryDocument
	operationType string
	contextValue  ContextValue
}

func (e *Executor) getOptions(query string, opts Options) (*request, error) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	moduleValue, err := e.bundle.GetContext(opts.ContextArg)
	if err != nil {
		return nil, err
	}
	return &request{
		document:      doc,
		operationType: operationType(doc, opts.OperationName),
		contextValue:  shallowMerge(opts.ContextValue, moduleValue),
	}, nil
}

// Run executes a query or mutation. Parse errors and context function
// errors are returned as errors; everything that goes wrong during execution
// is reported in Result.Errors.
func (e *Executor) Run(ctx context.Context, query string, opts Options) (*Result, error) {
	req, err := e.getOptions(query, opts)
	if err != nil {
		return nil, err
	}
	if req.operationType == string(language.Subscription) {
		return &Result{Errors: []Error{{Message: "subscription operations must be executed with Subscribe"}}}, nil
	}
	ctx = req.bind(ctx)

	var result *Result
	finish := req.start(ctx, query, opts.OperationName)
	defer func() {
		if rec := recover(); rec != nil {
			finish([]error{fmt.Errorf("panic: %v", rec)})
			panic(rec)
		}
		finish(resultErrors(result))
	}()
	result = e.engine.ExecuteRequest(ctx, req.document, opts.OperationName, opts.VariableValues, opts.RootValue)
	return result, nil
}

// Subscribe executes a subscription. The source stream of the operation's
// root field is opened through its Subscribe handler and callback receives
// one Result per event, in order, on the calling goroutine.
//
// Subscribe returns nil when the stream is closed, the error an event carries
// when the stream yields an error, and ctx.Err() when ctx is done. Errors
// raised before the stream is open are returned without calling callback.
func (e *Executor) Subscribe(ctx context.Context, query string, opts Options, callback func(*Result)) error {
	req, err := e.getOptions(query, opts)
	if err != nil {
		return err
	}
	ctx = req.bind(ctx)

	finish := req.start(ctx, query, opts.OperationName)
	var errs []error
	defer func() {
		if rec := recover(); rec != nil {
			finish([]error{fmt.Errorf("panic: %v", rec)})
			panic(rec)
		}
		finish(errs)
	}()

	seq := 0
	err = e.engine.Subscribe(ctx, req.document, opts.OperationName, opts.VariableValues, opts.RootValue, func(result *Result) {
		eventbus.Publish(ctx, events.SubscriptionResult{
			OperationName: opts.OperationName,
			Sequence:      seq,
			Errors:        resultErrors(result),
		})
		seq++
		callback(result)
	})
	if err != nil {
		errs = []error{err}
	}
	return err
}

// start publishes GraphQLStart and returns the func publishing the matching
// GraphQLFinish. Callers defer it so that a panicking callback still
// finishes the operation.
func (r *request) start(ctx context.Context, query, operationName string) func(errs []error) {
	began := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: query, OperationName: operationName, OperationType: r.operationType})
	return func(errs []error) {
		eventbus.Publish(ctx, events.GraphQLFinish{
			Query:         query,
			OperationName: operationName,
			OperationType: r.operationType,
			Errors:        errs,
			Duration:      time.Since(began),
		})
	}
}

// bind attaches the merged context value and a request id to ctx.
func (r *request) bind(ctx context.Context) context.Context {
	if _, ok := reqid.FromContext(ctx); !ok {
		ctx, _ = reqid.NewContext(ctx)
	}
	return withContextValue(ctx, r.contextValue)
}

func operationType(doc *language.QueryDocument, operationName string) string {
	if operationName == "" && len(doc.Operations) == 1 {
		return string(doc.Operations[0].Operation)
	}
	if op := doc.Operations.ForName(operationName); op != nil {
		return string(op.Operation)
	}
	return ""
}

func resultErrors(result *Result) []error {
	if result == nil || len(result.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(result.Errors))
	for i := range result.Errors {
		errs[i] = result.Errors[i]
	}
	return errs
}
