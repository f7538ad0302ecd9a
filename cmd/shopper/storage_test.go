package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-commerce-session/internal/config"
	"github.com/jrsteele09/go-commerce-session/session/filestore"
	"github.com/jrsteele09/go-commerce-session/session/memstore"
	"github.com/jrsteele09/go-commerce-session/session/redisstore"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Setenv("SESSION_STORE", "memory")
	storage, closer, err := openStorage(ctx, config.New())
	require.NoError(t, err)
	require.IsType(t, &memstore.MemStore{}, storage)
	require.NoError(t, closer())

	t.Setenv("SESSION_STORE", "file")
	t.Setenv("SESSION_DIR", t.TempDir())
	storage, closer, err = openStorage(ctx, config.New())
	require.NoError(t, err)
	require.IsType(t, &filestore.FileStore{}, storage)
	require.NoError(t, closer())

	mr := miniredis.RunT(t)
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("APP_NAME", "shop")
	storage, closer, err = openStorage(ctx, config.New())
	require.NoError(t, err)
	require.IsType(t, &redisstore.RedisStore{}, storage)
	require.NoError(t, storage.Set(ctx, "commerce.session", []byte("{}")))
	require.True(t, mr.Exists("shop:commerce.session"))
	require.NoError(t, closer())

	t.Setenv("SESSION_STORE", "etcd")
	_, _, err = openStorage(ctx, config.New())
	require.Error(t, err)
}
