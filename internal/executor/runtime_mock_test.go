package executor

import (
	"context"
	"fmt"
	"sync"
)

// MockResolver resolves one field of one source value.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// MockSubscriber opens the source stream of a subscription field.
type MockSubscriber func(ctx context.Context, source any, args map[string]any) (<-chan any, error)

const (
	CallKindSync      = "sync"
	CallKindAsync     = "async"
	CallKindSubscribe = "subscribe"
)

func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

func NewMockErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// Call records one runtime invocation. Async calls of one flush share a
// BatchID, counted from 1; sync and subscribe calls have BatchID 0.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	BatchID    int
}

// MockRuntime is a Runtime driven by per-field resolvers keyed
// "Type.field". Fields without a resolver resolve to null. It logs every
// call in order.
type MockRuntime struct {
	mu          sync.Mutex
	resolvers   map[string]MockResolver
	subscribers map[string]MockSubscriber
	calls       []Call
	batches     int

	typeResolver func(value any) (string, error)
	serializer   func(typeName string, value any) (any, error)
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{
		resolvers:   make(map[string]MockResolver, len(resolvers)),
		subscribers: make(map[string]MockSubscriber),
	}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

// SetTypeResolver replaces the default __typename lookup.
func (m *MockRuntime) SetTypeResolver(f func(value any) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typeResolver = f
}

// SetSerializer replaces the pass-through leaf serializer.
func (m *MockRuntime) SetSerializer(f func(typeName string, value any) (any, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serializer = f
}

// SetStream makes a subscription field emit events from a closed, buffered
// channel.
func (m *MockRuntime) SetStream(objectType, field string, events ...any) {
	m.SetSubscriber(objectType, field, func(ctx context.Context, source any, args map[string]any) (<-chan any, error) {
		ch := make(chan any, len(events))
		for _, ev := range events {
			ch <- ev
		}
		close(ch)
		return ch, nil
	})
}

func (m *MockRuntime) SetSubscriber(objectType, field string, sub MockSubscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[objectType+"."+field] = sub
}

func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockRuntime) record(c Call) MockResolver {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	return m.resolvers[c.ObjectType+"."+c.Field]
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	r := m.record(Call{Kind: CallKindSync, ObjectType: objectType, Field: field, Source: source, Args: args})
	if r == nil {
		return nil, nil
	}
	return r(ctx, source, args)
}

func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	m.mu.Lock()
	m.batches++
	batch := m.batches
	m.mu.Unlock()

	results := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		r := m.record(Call{Kind: CallKindAsync, ObjectType: t.ObjectType, Field: t.Field, Source: t.Source, Args: t.Args, BatchID: batch})
		if r != nil {
			v, err := r(ctx, t.Source, t.Args)
			results[i] = AsyncResolveResult{Value: v, Error: err}
		}
	}
	return results
}

func (m *MockRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	m.mu.Lock()
	f := m.typeResolver
	m.mu.Unlock()
	if f != nil {
		return f(value)
	}
	if v, ok := value.(map[string]any); ok {
		if name, ok := v["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve type")
}

func (m *MockRuntime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	m.mu.Lock()
	f := m.serializer
	m.mu.Unlock()
	if f == nil {
		return value, nil
	}
	return f(typeName, value)
}

func (m *MockRuntime) Subscribe(ctx context.Context, objectType string, field string, source any, args map[string]any) (<-chan any, error) {
	key := objectType + "." + field
	m.record(Call{Kind: CallKindSubscribe, ObjectType: objectType, Field: field, Source: source, Args: args})
	m.mu.Lock()
	sub := m.subscribers[key]
	m.mu.Unlock()
	if sub == nil {
		return nil, fmt.Errorf("no subscriber for %s", key)
	}
	return sub(ctx, source, args)
}
