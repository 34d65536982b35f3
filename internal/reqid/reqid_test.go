package reqid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	ctx, id := NewContext(context.Background())
	require.NotEmpty(t, id)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestNewContext_UniqueIDs(t *testing.T) {
	_, a := NewContext(context.Background())
	_, b := NewContext(context.Background())
	require.NotEqual(t, a, b)
}

func TestFromContext_Absent(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
}
