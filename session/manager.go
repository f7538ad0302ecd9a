package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Manager is the validity aware gate in front of Store. It is the only writer
// of the session record.
//
// SaveTokens follows a drop policy rather than a queue: while one save is in
// flight any other save on the same Manager is skipped. Callers that need to
// know what landed should read the record back after SaveTokens returns.
type Manager struct {
	store   *Store
	saving  atomic.Bool
	nowTime func() time.Time
	logger  zerolog.Logger
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for storage faults and skipped saves.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager that owns the given store.
func NewManager(store *Store, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	m := &Manager{
		store:   store,
		nowTime: time.Now,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Now returns the manager's notion of the current time.
func (m *Manager) Now() time.Time {
	return m.nowTime()
}

// Lookup reads the session record, keeping the absent/corrupt distinction.
func (m *Manager) Lookup(ctx context.Context) ReadResult {
	res := m.store.Read(ctx)
	if res.Err != nil {
		m.logger.Err(res.Err).Str("state", res.State.String()).Msg("Error getting tokens")
	}
	return res
}

// GetTokens returns the current session, or nil if there is none or it cannot be read.
func (m *Manager) GetTokens(ctx context.Context) *Session {
	res := m.Lookup(ctx)
	if !res.Found() {
		return nil
	}
	sess := res.Session
	return &sess
}

// SaveTokens persists sess. If another save is already in progress the call
// is skipped and returns nil.
func (m *Manager) SaveTokens(ctx context.Context, sess Session) error {
	if !m.saving.CompareAndSwap(false, true) {
		m.logger.Warn().Str("customer_id", sess.CustomerID).Msg("Save already in progress, skipping")
		return nil
	}
	defer m.saving.Store(false)

	m.logger.Debug().
		Str("customer_id", sess.CustomerID).
		Dur("expires_in", sess.Expiry().Sub(m.nowTime()).Round(time.Minute)).
		Msg("Saving tokens")

	if err := m.store.Write(ctx, sess); err != nil {
		m.logger.Err(err).Msg("Error saving tokens")
		return errors.Wrap(err, "[Manager.SaveTokens]")
	}
	return nil
}

// ClearTokens resets the record to empty. Storage errors are logged, not returned.
func (m *Manager) ClearTokens(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Err(err).Msg("Error clearing tokens")
	}
}

// IsTokenValid reports whether a usable access token is stored. It is
// evaluated against the clock on every call.
func (m *Manager) IsTokenValid(ctx context.Context) bool {
	sess := m.GetTokens(ctx)
	if sess == nil {
		return false
	}
	return sess.ValidAt(m.nowTime())
}
