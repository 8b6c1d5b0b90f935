package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/modgraph/internal/schema"
)

func TestExecuteRequest_DepthWiseBatches(t *testing.T) {
	sch := newSchemaWithQueryType(
		newObjectType("Query", asyncField("users", schema.ListType(schema.NamedType("User")))),
		newObjectType("User",
			syncField("name", schema.NamedType("String")),
			asyncField("friends", schema.ListType(schema.NamedType("User"))),
		),
	)
	alice := map[string]any{"name": "alice"}
	bob := map[string]any{"name": "bob"}
	carol := map[string]any{"name": "carol"}
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.users":  NewMockValueResolver([]any{alice, bob}),
		"User.name":    project("name"),
		"User.friends": NewMockValueResolver([]any{carol}),
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(),
		mustParseQuery(t, "{ users { name friends { name } } }"), "", nil, nil)

	want := &ExecutionResult{
		Data: map[string]any{
			"users": []any{
				map[string]any{"name": "alice", "friends": []any{map[string]any{"name": "carol"}}},
				map[string]any{"name": "bob", "friends": []any{map[string]any{"name": "carol"}}},
			},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []Call{
		{Kind: CallKindAsync, ObjectType: "Query", Field: "users", Args: map[string]any{}, BatchID: 1},
		{Kind: CallKindSync, ObjectType: "User", Field: "name", Source: alice, Args: map[string]any{}},
		{Kind: CallKindSync, ObjectType: "User", Field: "name", Source: bob, Args: map[string]any{}},
		{Kind: CallKindAsync, ObjectType: "User", Field: "friends", Source: alice, Args: map[string]any{}, BatchID: 2},
		{Kind: CallKindAsync, ObjectType: "User", Field: "friends", Source: bob, Args: map[string]any{}, BatchID: 2},
		{Kind: CallKindSync, ObjectType: "User", Field: "name", Source: carol, Args: map[string]any{}},
		{Kind: CallKindSync, ObjectType: "User", Field: "name", Source: carol, Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteRequest_SyncDescentDoesNotAddDepth(t *testing.T) {
	sch := newSchemaWithQueryType(
		newObjectType("Query",
			asyncField("a", schema.NamedType("String")),
			syncField("wrapper", schema.NamedType("Wrapper")),
		),
		newObjectType("Wrapper", asyncField("b", schema.NamedType("String"))),
	)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.a":       NewMockValueResolver("A"),
		"Query.wrapper": NewMockValueResolver(map[string]any{}),
		"Wrapper.b":     NewMockValueResolver("B"),
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ a wrapper { b } }"), "", nil, nil)
	want := &ExecutionResult{Data: map[string]any{"a": "A", "wrapper": map[string]any{"b": "B"}}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []Call{
		{Kind: CallKindSync, ObjectType: "Query", Field: "wrapper", Args: map[string]any{}},
		{Kind: CallKindAsync, ObjectType: "Query", Field: "a", Args: map[string]any{}, BatchID: 1},
		{Kind: CallKindAsync, ObjectType: "Wrapper", Field: "b", Source: map[string]any{}, Args: map[string]any{}, BatchID: 1},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteRequest_TombstonedTasksAreDropped(t *testing.T) {
	sch := newSchemaWithQueryType(
		newObjectType("Query", asyncField("obj", schema.NamedType("Obj"))),
		newObjectType("Obj",
			asyncField("required", schema.NonNullType(schema.NamedType("String"))),
			asyncField("child", schema.NamedType("Obj")),
		),
	)
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.obj":    NewMockValueResolver(map[string]any{}),
		"Obj.required": NewMockValueResolver(nil),
		"Obj.child":    NewMockValueResolver(map[string]any{}),
	})

	got := NewExecutor(rt, sch).ExecuteRequest(context.Background(),
		mustParseQuery(t, "{ obj { required child { required } } }"), "", nil, nil)

	want := &ExecutionResult{
		Data: map[string]any{"obj": nil},
		Errors: []GraphQLError{
			{Message: "Cannot return null for non-nullable field obj.required", Locations: []Location{{Line: 1, Column: 9}}, Path: Path{"obj", "required"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	// child.required is never requested: its path lies under the nulled obj.
	for _, c := range rt.GetCalls() {
		if c.BatchID > 2 {
			t.Fatalf("unexpected call after tombstone: %+v", c)
		}
	}
}

func TestExecuteRequest_AsyncTaskCarriesPath(t *testing.T) {
	sch := newSchemaWithQueryType(newObjectType("Query", asyncField("a", schema.NamedType("String"))))

	var gotTasks []AsyncResolveTask
	rt := &recordingRuntime{MockRuntime: NewMockRuntime(nil), tasks: &gotTasks}
	NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ x: a }"), "", nil, "root")

	want := []AsyncResolveTask{{ObjectType: "Query", Field: "a", Source: "root", Args: map[string]any{}, Path: Path{"x"}}}
	if diff := cmp.Diff(want, gotTasks); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
}

type recordingRuntime struct {
	*MockRuntime
	tasks *[]AsyncResolveTask
}

func (r *recordingRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	*r.tasks = append(*r.tasks, tasks...)
	return r.MockRuntime.BatchResolveAsync(ctx, tasks)
}
