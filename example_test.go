package modgraph_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hanpama/modgraph"
)

func Example() {
	greeting := modgraph.Module{
		Schema: "type Query { hello: String }",
		Resolvers: modgraph.Resolvers{
			"Query": modgraph.Resolvers{
				"hello": modgraph.ResolverFunc(func(_ context.Context, p modgraph.ResolveParams) (any, error) {
					return "Hello " + p.Context["name"].(string), nil
				}),
			},
		},
		Context: func(any) (modgraph.ContextValue, error) {
			return modgraph.ContextValue{"name": "World"}, nil
		},
	}

	exec, err := modgraph.NewExecutor(greeting)
	if err != nil {
		panic(err)
	}
	res, err := exec.Run(context.Background(), "query { hello }", modgraph.Options{})
	if err != nil {
		panic(err)
	}
	out, _ := json.Marshal(res)
	fmt.Println(string(out))
	// Output: {"data":{"hello":"Hello World"}}
}

func ExampleCompile() {
	bundle := modgraph.Compile(
		modgraph.Module{
			Schema:  "type Query { health: String }",
			Context: func(any) (modgraph.ContextValue, error) { return modgraph.ContextValue{"a": 1}, nil },
		},
		modgraph.Module{
			Schema:  "extend type Query { health2: String }",
			Context: func(any) (modgraph.ContextValue, error) { return modgraph.ContextValue{"a": 2, "b": 3}, nil },
		},
	)
	ctx, _ := bundle.GetContext(nil)
	fmt.Println(bundle.TypeDefs)
	fmt.Println(ctx)
	// Output:
	// [type Query { health: String } extend type Query { health2: String }]
	// map[a:2 b:3]
}

func ExampleExecutor_Subscribe() {
	exec, err := modgraph.NewExecutor(modgraph.Module{
		Schema: `
			type Query { ok: Boolean }
			type Subscription { count: Int }
		`,
		Resolvers: modgraph.Resolvers{
			"Subscription": modgraph.Resolvers{
				"count": modgraph.SubscribeFunc(func(ctx context.Context, _ modgraph.ResolveParams) (<-chan any, error) {
					ch := make(chan any)
					go func() {
						defer close(ch)
						for i := 1; i <= 3; i++ {
							select {
							case ch <- map[string]any{"count": i}:
							case <-ctx.Done():
								return
							}
						}
					}()
					return ch, nil
				}),
			},
		},
	})
	if err != nil {
		panic(err)
	}
	err = exec.Subscribe(context.Background(), "subscription { count }", modgraph.Options{}, func(res *modgraph.Result) {
		fmt.Println(res.Data)
	})
	fmt.Println(err)
	// Output:
	// map[count:1]
	// map[count:2]
	// map[count:3]
	// <nil>
}
