package session

import (
	"context"

	"github.com/goccy/go-json"
	sessionerrors "github.com/jrsteele09/go-commerce-session/internal/errors"
	"github.com/pkg/errors"
)

// ReadState describes what Store.Read found.
type ReadState int

const (
	// StateAbsent means no session has been persisted.
	StateAbsent ReadState = iota
	// StatePresent means a complete session was read.
	StatePresent
	// StateCorrupt means a record exists but could not be decoded or is partially populated.
	StateCorrupt
	// StateUnavailable means the storage backend returned an error.
	StateUnavailable
)

func (s ReadState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePresent:
		return "present"
	case StateCorrupt:
		return "corrupt"
	case StateUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// ReadResult is the outcome of reading the session record. Session is only
// meaningful when State is StatePresent; Err is set for StateCorrupt and
// StateUnavailable.
type ReadResult struct {
	Session Session
	State   ReadState
	Err     error
}

// Found reports whether a usable session was read.
func (r ReadResult) Found() bool {
	return r.State == StatePresent
}

// Store persists the single session record under one key of a Storage.
// It has no concurrency control of its own.
type Store struct {
	storage Storage
	key     string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the storage key (DefaultKey).
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// NewStore creates a Store on top of the given storage backend.
func NewStore(storage Storage, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}
	s := &Store{storage: storage, key: DefaultKey}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Key returns the storage key the record is kept under.
func (s *Store) Key() string {
	return s.key
}

// Read returns the persisted record. It never fails: missing data is reported
// as StateAbsent, undecodable data as StateCorrupt and backend failures as
// StateUnavailable.
func (s *Store) Read(ctx context.Context) ReadResult {
	data, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return ReadResult{
			State: StateUnavailable,
			Err:   sessionerrors.Wrapf(sessionerrors.ErrStorageUnavailable, "[Store.Read] %v", err),
		}
	}
	if !found || len(data) == 0 {
		return ReadResult{State: StateAbsent}
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return ReadResult{
			State: StateCorrupt,
			Err:   sessionerrors.Wrapf(sessionerrors.ErrCorruptSession, "[Store.Read] decode: %v", err),
		}
	}
	if sess.IsZero() {
		return ReadResult{State: StateAbsent}
	}
	if !sess.Complete() {
		return ReadResult{
			State: StateCorrupt,
			Err:   sessionerrors.Wrapf(sessionerrors.ErrCorruptSession, "[Store.Read] incomplete record"),
		}
	}
	return ReadResult{Session: sess, State: StatePresent}
}

// Write atomically replaces the persisted record. A partially populated
// session is refused.
func (s *Store) Write(ctx context.Context, sess Session) error {
	if sess.IsZero() {
		return s.Clear(ctx)
	}
	if !sess.Complete() {
		return sessionerrors.Wrapf(sessionerrors.ErrCorruptSession, "[Store.Write] incomplete record")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "[Store.Write] encode")
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return errors.Wrap(err, "[Store.Write] storage.Set")
	}
	return nil
}

// Clear resets the record to empty.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return errors.Wrap(err, "[Store.Clear] storage.Delete")
	}
	return nil
}
