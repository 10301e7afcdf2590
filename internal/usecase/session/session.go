package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	sessionDomain "edu_progress/internal/domain/session"
)

// Storage is the client-side key/value storage holding the session records.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type state int

const (
	stateMissing state = iota
	stateInvalid
	stateExpired
	stateValid
)

// Manager creates, validates, extends and clears the signed session kept in
// Storage. Invalid or corrupted records are never reported as errors: they
// are cleared and read as "no session".
type Manager struct {
	storage  Storage
	secret   []byte
	validity time.Duration
	now      func() time.Time
	events   *Broadcaster
	scope    string
	log      *zap.SugaredLogger
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithValidity(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.validity = d
		}
	}
}

func WithBroadcaster(b *Broadcaster) Option {
	return func(m *Manager) { m.events = b }
}

// WithScope tags published events with the storage namespace.
func WithScope(scope string) Option {
	return func(m *Manager) { m.scope = scope }
}

func NewManager(storage Storage, secret []byte, log *zap.SugaredLogger, opts ...Option) *Manager {
	m := &Manager{
		storage:  storage,
		secret:   secret,
		validity: sessionDomain.DefaultValidity,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.events == nil {
		m.events = NewBroadcaster()
	}
	return m
}

func (m *Manager) Events() *Broadcaster {
	return m.events
}

func (m *Manager) Validity() time.Duration {
	return m.validity
}

// CreateSession stores a fresh session for userCode. It returns false without
// touching storage when the code is malformed.
func (m *Manager) CreateSession(ctx context.Context, userCode string) bool {
	if !sessionDomain.ValidUserCode(userCode) {
		m.log.Warnf("CreateSession: rejected malformed user code %q", userCode)
		return false
	}
	s := sessionDomain.New(m.secret, userCode, m.now())
	if err := m.write(ctx, s); err != nil {
		m.log.Errorf("CreateSession: %v", err)
		_ = m.storage.Delete(ctx, sessionDomain.StorageKey, sessionDomain.TimestampKey)
		return false
	}
	m.events.Publish(Event{Scope: m.scope, Authenticated: true, UserCode: userCode})
	return true
}

// GetSession returns the stored user code if the session is valid and
// refreshes lastActive. Any invalid state clears storage.
func (m *Manager) GetSession(ctx context.Context) (string, bool) {
	s, st := m.inspect(ctx)
	switch st {
	case stateMissing:
		return "", false
	case stateValid:
	default:
		m.log.Infof("GetSession: dropping invalid session record")
		m.ClearSession(ctx)
		return "", false
	}

	s.LastActive = m.now().UnixMilli()
	raw, err := json.Marshal(s)
	if err == nil {
		err = m.storage.Set(ctx, sessionDomain.StorageKey, string(raw))
	}
	if err != nil {
		m.log.Warnf("GetSession: failed to refresh lastActive: %v", err)
	}
	return s.UserCode, true
}

// ClearSession removes both session records. Safe to call repeatedly.
func (m *Manager) ClearSession(ctx context.Context) {
	if err := m.storage.Delete(ctx, sessionDomain.StorageKey, sessionDomain.TimestampKey); err != nil {
		m.log.Errorf("ClearSession: %v", err)
	}
	m.events.Publish(Event{Scope: m.scope, Authenticated: false})
}

// ExtendSession restarts the validity window of a valid session. Nothing is
// written when validation fails.
func (m *Manager) ExtendSession(ctx context.Context) bool {
	s, st := m.inspect(ctx)
	if st != stateValid {
		return false
	}
	extended := sessionDomain.New(m.secret, s.UserCode, m.now())
	if err := m.write(ctx, extended); err != nil {
		m.log.Errorf("ExtendSession: %v", err)
		return false
	}
	return true
}

// RemainingTime is the time left in the validity window, 0 when there is no
// valid session.
func (m *Manager) RemainingTime(ctx context.Context) time.Duration {
	s, st := m.inspect(ctx)
	if st != stateValid {
		return 0
	}
	return s.Remaining(m.validity, m.now())
}

func (m *Manager) IsExpiringSoon(ctx context.Context, threshold time.Duration) bool {
	remaining := m.RemainingTime(ctx)
	return remaining > 0 && remaining <= threshold
}

// Expired reports an intact session record whose window has elapsed.
func (m *Manager) Expired(ctx context.Context) bool {
	_, st := m.inspect(ctx)
	return st == stateExpired
}

func (m *Manager) write(ctx context.Context, s sessionDomain.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := m.storage.Set(ctx, sessionDomain.StorageKey, string(raw)); err != nil {
		return err
	}
	return m.storage.Set(ctx, sessionDomain.TimestampKey, strconv.FormatInt(s.CreatedAt, 10))
}

// inspect reads both records without side effects.
func (m *Manager) inspect(ctx context.Context) (sessionDomain.Session, state) {
	raw, okRecord, err := m.storage.Get(ctx, sessionDomain.StorageKey)
	if err != nil {
		m.log.Warnf("session storage read failed: %v", err)
		return sessionDomain.Session{}, stateInvalid
	}
	ts, okTimestamp, err := m.storage.Get(ctx, sessionDomain.TimestampKey)
	if err != nil {
		m.log.Warnf("session storage read failed: %v", err)
		return sessionDomain.Session{}, stateInvalid
	}
	if !okRecord && !okTimestamp {
		return sessionDomain.Session{}, stateMissing
	}
	if !okRecord || !okTimestamp {
		return sessionDomain.Session{}, stateInvalid
	}

	var s sessionDomain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return sessionDomain.Session{}, stateInvalid
	}
	createdAt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || createdAt != s.CreatedAt {
		return sessionDomain.Session{}, stateInvalid
	}
	if !sessionDomain.ValidUserCode(s.UserCode) || !s.ChecksumValid(m.secret) {
		return sessionDomain.Session{}, stateInvalid
	}
	if s.Expired(m.validity, m.now()) {
		return s, stateExpired
	}
	return s, stateValid
}
