/*
Package modgraph composes a GraphQL schema out of modules and runs
operations against it in process.

A Module bundles an SDL fragment, the resolvers backing it and a function
building the module's share of the request context. Compile merges a list
of modules into a Bundle:

  - TypeDefs keeps every non-empty fragment in module order, so later
    fragments may extend types declared earlier;
  - Resolvers deep merges the resolver trees, the later module winning on
    conflicting leaves;
  - GetContext calls every context function with one argument and shallow
    merges the results.

An Executor builds the executable schema from a Bundle once and executes
queries, mutations (Run) and subscriptions (Subscribe):

	exec, err := modgraph.NewExecutor(users.Module, posts.Module)
	if err != nil {
		return err
	}
	res, err := exec.Run(ctx, "{ me { name } }", modgraph.Options{ContextArg: r})

Fields without a resolve function are read from the parent value: a map
key, or an exported struct field matched by json tag or name. Fields with
one are resolved breadth first, one batch per depth of the response.

A subscription field registers a Field with a Subscribe function returning
a channel. Every value received from it is executed as the root value of
the operation; an error value ends the subscription.

Operations are announced on the internal event bus so that logging,
metrics and tracing can observe them; nothing is published unless a bus is
installed.
*/
package modgraph
