package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-commerce-session/session/filestore"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sessions")
	fs, err := filestore.New(dir)
	require.NoError(t, err)

	_, found, err := fs.Get(ctx, "commerce.session")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, fs.Set(ctx, "commerce.session", []byte(`{"a":1}`)))
	require.NoError(t, fs.Set(ctx, "commerce.session", []byte(`{"a":2}`)))

	data, found, err := fs.Get(ctx, "commerce.session")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"a":2}`, string(data))

	info, err := os.Stat(fs.Path("commerce.session"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Delete(ctx, "commerce.session"))
	require.NoError(t, fs.Delete(ctx, "commerce.session"))
	_, found, err = fs.Get(ctx, "commerce.session")
	require.NoError(t, err)
	require.False(t, found)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := filestore.New(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("persisted")))

	second, err := filestore.New(dir)
	require.NoError(t, err)
	data, found, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "persisted", string(data))
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "evil_.._path.json", filepath.Base(fs.Path("evil/../path")))
}

func TestFileStoreRequiresDir(t *testing.T) {
	_, err := filestore.New(" ")
	require.Error(t, err)
}
