package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ n int }
type pong struct{}

func TestDispatchByType(t *testing.T) {
	b := New()
	var got []string
	On(b, func(_ context.Context, p ping) { got = append(got, "a") })
	On(b, func(_ context.Context, p ping) { got = append(got, "b") })
	On(b, func(_ context.Context, _ pong) { got = append(got, "pong") })

	Emit(context.Background(), b, ping{n: 1})
	require.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	b := New()
	var got []int
	// Both handlers share the same code pointer.
	register := func(tag int) func() {
		return On(b, func(_ context.Context, p ping) { got = append(got, tag*p.n) })
	}
	_ = register(1)
	off := register(10)

	off()
	off()
	Emit(context.Background(), b, ping{n: 2})
	require.Equal(t, []int{2}, got)
}

func TestUnsubscribeLastHandlerDropsType(t *testing.T) {
	b := New()
	off := On(b, func(context.Context, ping) {})
	off()
	require.Empty(t, b.handlers)
}

func TestGlobalBus(t *testing.T) {
	t.Cleanup(func() { Use(nil) })

	Use(nil)
	called := 0
	off := Subscribe(func(context.Context, ping) { called++ })
	Publish(context.Background(), ping{})
	require.Equal(t, 0, called)
	off()

	Use(New())
	off = Subscribe(func(context.Context, ping) { called++ })
	Publish(context.Background(), ping{})
	Publish(context.Background(), pong{})
	require.Equal(t, 1, called)
	off()
	Publish(context.Background(), ping{})
	require.Equal(t, 1, called)
}

func TestEmitOnNilBus(t *testing.T) {
	var b *Bus
	require.NotPanics(t, func() { b.emit(context.Background(), ping{}) })
}
