package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/jrsteele09/go-commerce-session/session/memstore"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := memstore.New()
	store, err := session.NewStore(storage, session.WithKey("shop.eu"))
	require.NoError(t, err)
	require.Equal(t, "shop.eu", store.Key())

	require.Equal(t, session.StateAbsent, store.Read(ctx).State)

	sess := testSession("a", baseTime.Add(time.Hour))
	require.NoError(t, store.Write(ctx, sess))

	res := store.Read(ctx)
	require.True(t, res.Found())
	require.Equal(t, sess, res.Session)
	require.NoError(t, res.Err)

	_, found, err := storage.Get(ctx, "shop.eu")
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, store.Clear(ctx))
	require.Equal(t, session.StateAbsent, store.Read(ctx).State)
	require.Equal(t, 0, storage.Len())
}

func TestStoreWriteEmptyClears(t *testing.T) {
	ctx := context.Background()
	storage := memstore.New()
	store, err := session.NewStore(storage)
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, testSession("a", baseTime)))
	require.NoError(t, store.Write(ctx, session.Session{}))
	require.Equal(t, session.StateAbsent, store.Read(ctx).State)
}

func TestNewStoreRequiresStorage(t *testing.T) {
	_, err := session.NewStore(nil)
	require.Error(t, err)
}

func TestSessionHelpers(t *testing.T) {
	require.True(t, session.Session{}.IsZero())
	require.True(t, session.Session{}.Expiry().IsZero())

	sess := testSession("a", baseTime)
	require.True(t, sess.Complete())
	require.Equal(t, baseTime.UnixMilli(), sess.Expiry().UnixMilli())
	require.True(t, sess.ValidAt(baseTime.Add(-time.Second)))
	require.False(t, sess.ValidAt(baseTime))

	sess.Usid = ""
	require.False(t, sess.Complete())
}

func TestStoreWriteRejectsIncompleteSession(t *testing.T) {
	ctx := context.Background()
	storage := memstore.New()
	store, err := session.NewStore(storage)
	require.NoError(t, err)

	partial := testSession("a", baseTime)
	partial.RefreshToken = ""
	require.Error(t, store.Write(ctx, partial))
	require.Equal(t, 0, storage.Len())
	require.Equal(t, session.StateAbsent, store.Read(ctx).State)
}
