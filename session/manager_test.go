package session_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/go-commerce-session/session"
	"github.com/jrsteele09/go-commerce-session/session/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSession(suffix string, expiry time.Time) session.Session {
	return session.Session{
		AccessToken:  "access-" + suffix,
		RefreshToken: "refresh-" + suffix,
		CustomerID:   "customer-" + suffix,
		Usid:         "usid-" + suffix,
		TokenExpiry:  expiry.UnixMilli(),
	}
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func setupManager(t *testing.T, storage session.Storage, options ...session.ManagerOption) *session.Manager {
	t.Helper()
	store, err := session.NewStore(storage)
	require.NoError(t, err)
	options = append([]session.ManagerOption{session.WithLogger(zerolog.Nop())}, options...)
	m, err := session.NewManager(store, options...)
	require.NoError(t, err)
	return m
}

func TestIsTokenValidBoundary(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: baseTime}
	m := setupManager(t, memstore.New(), session.WithNowTime(clock.Now))

	expiry := baseTime.Add(10 * time.Minute)
	require.NoError(t, m.SaveTokens(ctx, testSession("a", expiry)))

	clock.Set(expiry.Add(-time.Millisecond))
	require.True(t, m.IsTokenValid(ctx))

	clock.Set(expiry)
	require.False(t, m.IsTokenValid(ctx), "token must be invalid at exactly tokenExpiry")

	clock.Set(expiry.Add(time.Second))
	require.False(t, m.IsTokenValid(ctx))
}

func TestIsTokenValidWithoutSession(t *testing.T) {
	m := setupManager(t, memstore.New())
	require.False(t, m.IsTokenValid(context.Background()))
	require.Nil(t, m.GetTokens(context.Background()))
}

func TestSaveGetClear(t *testing.T) {
	ctx := context.Background()
	m := setupManager(t, memstore.New())

	sess := testSession("a", time.Now().Add(time.Hour))
	require.NoError(t, m.SaveTokens(ctx, sess))

	got := m.GetTokens(ctx)
	require.NotNil(t, got)
	require.Equal(t, sess, *got)
	require.True(t, m.IsTokenValid(ctx))

	m.ClearTokens(ctx)
	require.Nil(t, m.GetTokens(ctx))
	require.Equal(t, session.StateAbsent, m.Lookup(ctx).State)
}

// blockingStorage parks the first Set until release is closed.
type blockingStorage struct {
	*memstore.MemStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStorage) Set(ctx context.Context, key string, data []byte) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return b.MemStore.Set(ctx, key, data)
}

func TestConcurrentSaveIsDropped(t *testing.T) {
	ctx := context.Background()
	storage := &blockingStorage{
		MemStore: memstore.New(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	var logs bytes.Buffer
	m := setupManager(t, storage, session.WithLogger(zerolog.New(&logs)))

	first := testSession("first", time.Now().Add(time.Hour))
	second := testSession("second", time.Now().Add(time.Hour))

	done := make(chan error, 1)
	go func() {
		done <- m.SaveTokens(ctx, first)
	}()
	<-storage.entered

	// The first save is parked inside the storage write; this one must be skipped.
	require.NoError(t, m.SaveTokens(ctx, second))

	close(storage.release)
	require.NoError(t, <-done)

	got := m.GetTokens(ctx)
	require.NotNil(t, got)
	require.Equal(t, first, *got)
	require.Contains(t, logs.String(), "Save already in progress, skipping")

	// The flag is released once the first save completes.
	require.NoError(t, m.SaveTokens(ctx, second))
	require.Equal(t, second, *m.GetTokens(ctx))
}

// failingStorage fails every operation.
type failingStorage struct{}

var errBackend = errors.New("backend down")

func (failingStorage) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBackend }
func (failingStorage) Set(context.Context, string, []byte) error         { return errBackend }
func (failingStorage) Delete(context.Context, string) error              { return errBackend }

func TestStorageErrorsDegradeToNoSession(t *testing.T) {
	ctx := context.Background()
	m := setupManager(t, failingStorage{})

	require.Nil(t, m.GetTokens(ctx))
	require.False(t, m.IsTokenValid(ctx))
	require.Equal(t, session.StateUnavailable, m.Lookup(ctx).State)

	m.ClearTokens(ctx)

	err := m.SaveTokens(ctx, testSession("a", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, errBackend)

	// A failed write must not leave the save flag stuck.
	err = m.SaveTokens(ctx, testSession("b", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, errBackend)
}

func TestCorruptRecordIsInspectable(t *testing.T) {
	ctx := context.Background()
	storage := memstore.New()
	m := setupManager(t, storage)

	require.NoError(t, storage.Set(ctx, session.DefaultKey, []byte("{not json")))
	res := m.Lookup(ctx)
	require.Equal(t, session.StateCorrupt, res.State)
	require.Error(t, res.Err)
	require.Nil(t, m.GetTokens(ctx))
	require.False(t, m.IsTokenValid(ctx))

	partial, err := json.Marshal(session.Session{AccessToken: "only-access"})
	require.NoError(t, err)
	require.NoError(t, storage.Set(ctx, session.DefaultKey, partial))
	require.Equal(t, session.StateCorrupt, m.Lookup(ctx).State)
}

func TestExpiryFrom(t *testing.T) {
	got := session.ExpiryFrom(baseTime, 3600)
	require.Equal(t, baseTime.UnixMilli()+(3600-300)*1000, got)
}
