// Package filestore persists session records as JSON files on local disk.
//
// Each key maps to <dir>/<key>.json. Writes go to a temporary file that is
// renamed into place, and every operation holds an advisory lock on
// <dir>/<key>.json.lock so separate processes sharing the directory do not
// interleave.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/jrsteele09/go-commerce-session/session"
)

var _ session.Storage = (*FileStore)(nil)

const (
	fileMode = 0o600
	dirMode  = 0o700

	lockRetryDelay = 20 * time.Millisecond
)

// FileStore is a directory of JSON files.
type FileStore struct {
	dir string
}

// New creates a FileStore rooted at dir, creating the directory if needed.
func New(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("[filestore.New] directory is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("[filestore.New] create directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file a key is stored in.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, sanitize(key)+".json")
}

// Get reads the file for key under a shared lock.
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := f.Path(key)
	lock := flock.New(path + ".lock")
	if _, err := lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, false, fmt.Errorf("[FileStore.Get] lock %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("[FileStore.Get] read %s: %w", path, err)
	}
	return data, true, nil
}

// Set writes data for key under an exclusive lock.
func (f *FileStore) Set(ctx context.Context, key string, data []byte) error {
	path := f.Path(key)
	lock := flock.New(path + ".lock")
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("[FileStore.Set] lock %s: %w", path, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(f.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("[FileStore.Set] create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("[FileStore.Set] write: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("[FileStore.Set] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileStore.Set] close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("[FileStore.Set] rename: %w", err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	path := f.Path(key)
	lock := flock.New(path + ".lock")
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("[FileStore.Delete] lock %s: %w", path, err)
	}
	defer lock.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[FileStore.Delete] remove %s: %w", path, err)
	}
	return nil
}

func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
}
