package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestNewContextGeneratesDistinctIDs(t *testing.T) {
	_, a := NewContext(context.Background())
	_, b := NewContext(context.Background())
	require.NotEqual(t, a, b)
}

func TestWithID(t *testing.T) {
	ctx := WithID(context.Background(), "client-supplied")
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "client-supplied", got)
}
