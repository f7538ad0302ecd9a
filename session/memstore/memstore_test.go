package memstore_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-commerce-session/session/memstore"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	m := memstore.New()

	_, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	value := []byte("v1")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), got, "stored bytes must not alias the caller's slice")

	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.Delete(ctx, "k"))
	require.Equal(t, 0, m.Len())
}
