package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	sessionDomain "edu_progress/internal/domain/session"
	"edu_progress/internal/repository"
)

var testSecret = []byte("test-secret")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T) (*Manager, *repository.MemorySessionStorage, *fakeClock) {
	t.Helper()
	storage := repository.NewSessionMapStorage()
	clock := newFakeClock()
	m := NewManager(storage, testSecret, zap.NewNop().Sugar(), WithClock(clock.Now))
	return m, storage, clock
}

func readRecord(t *testing.T, storage *repository.MemorySessionStorage) sessionDomain.Session {
	t.Helper()
	raw, ok, _ := storage.Get(context.Background(), sessionDomain.StorageKey)
	if !ok {
		t.Fatalf("session record missing")
	}
	var s sessionDomain.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return s
}

func writeRecord(t *testing.T, storage *repository.MemorySessionStorage, s sessionDomain.Session) {
	t.Helper()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("encode record: %v", err)
	}
	ctx := context.Background()
	_ = storage.Set(ctx, sessionDomain.StorageKey, string(raw))
	_ = storage.Set(ctx, sessionDomain.TimestampKey, strconv.FormatInt(s.CreatedAt, 10))
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, storage, _ := newTestManager(t)

	for _, code := range []string{"ABCD-1234", "Z9Y8-X7W6"} {
		if !m.CreateSession(ctx, code) {
			t.Fatalf("CreateSession(%q) failed", code)
		}
		got, ok := m.GetSession(ctx)
		if !ok || got != code {
			t.Fatalf("GetSession=%q,%v, want %q", got, ok, code)
		}
	}
	if storage.Len() != 2 {
		t.Fatalf("expected exactly two records, got %d", storage.Len())
	}
}

func TestCreateRejectsBadFormat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, storage, _ := newTestManager(t)

	if m.CreateSession(ctx, "bad") {
		t.Fatalf("CreateSession(bad) must fail")
	}
	if storage.Len() != 0 {
		t.Fatalf("rejected code must leave no records, got %d", storage.Len())
	}
	if _, ok := m.GetSession(ctx); ok {
		t.Fatalf("no session expected")
	}
}

func TestTamperedSessionIsCleared(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("user code", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		m.CreateSession(ctx, "ABCD-1234")
		s := readRecord(t, storage)
		s.UserCode = "WXYZ-9999"
		writeRecord(t, storage, s)

		if _, ok := m.GetSession(ctx); ok {
			t.Fatalf("tampered user code must not validate")
		}
		if storage.Len() != 0 {
			t.Fatalf("invalid session must be cleared")
		}
	})

	t.Run("checksum", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		m.CreateSession(ctx, "ABCD-1234")
		s := readRecord(t, storage)
		s.Checksum = "00" + s.Checksum[2:]
		writeRecord(t, storage, s)

		if _, ok := m.GetSession(ctx); ok {
			t.Fatalf("tampered checksum must not validate")
		}
	})

	t.Run("timestamp record", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		m.CreateSession(ctx, "ABCD-1234")
		_ = storage.Set(ctx, sessionDomain.TimestampKey, "12345")

		if _, ok := m.GetSession(ctx); ok {
			t.Fatalf("mismatching timestamp record must not validate")
		}
	})

	t.Run("missing timestamp", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		m.CreateSession(ctx, "ABCD-1234")
		_ = storage.Delete(ctx, sessionDomain.TimestampKey)

		if _, ok := m.GetSession(ctx); ok {
			t.Fatalf("half a session must not validate")
		}
		if storage.Len() != 0 {
			t.Fatalf("leftover record must be cleared")
		}
	})

	t.Run("garbage json", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		_ = storage.Set(ctx, sessionDomain.StorageKey, "{not json")
		_ = storage.Set(ctx, sessionDomain.TimestampKey, "1")

		if _, ok := m.GetSession(ctx); ok {
			t.Fatalf("corrupted record must not validate")
		}
	})
}

func TestExpiredSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, storage, clock := newTestManager(t)

	created := clock.Now().Add(-sessionDomain.DefaultValidity - time.Millisecond)
	writeRecord(t, storage, sessionDomain.New(testSecret, "ABCD-1234", created))

	if got := m.RemainingTime(ctx); got != 0 {
		t.Fatalf("RemainingTime=%v, want 0", got)
	}
	if !m.Expired(ctx) {
		t.Fatalf("expected Expired")
	}
	if _, ok := m.GetSession(ctx); ok {
		t.Fatalf("expired session must not validate")
	}
	if storage.Len() != 0 {
		t.Fatalf("expired session must be cleared")
	}
}

func TestGetSessionRefreshesLastActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, storage, clock := newTestManager(t)

	m.CreateSession(ctx, "ABCD-1234")
	before := readRecord(t, storage)
	clock.Advance(10 * time.Minute)

	if _, ok := m.GetSession(ctx); !ok {
		t.Fatalf("GetSession failed")
	}
	after := readRecord(t, storage)
	if after.LastActive != before.LastActive+(10*time.Minute).Milliseconds() {
		t.Fatalf("LastActive=%d, want %d", after.LastActive, before.LastActive+(10*time.Minute).Milliseconds())
	}
	if after.CreatedAt != before.CreatedAt {
		t.Fatalf("GetSession must not move createdAt")
	}
}

func TestExtendSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _, clock := newTestManager(t)

	m.CreateSession(ctx, "ABCD-1234")
	clock.Advance(20 * time.Hour)
	if got := m.RemainingTime(ctx); got != 4*time.Hour {
		t.Fatalf("RemainingTime=%v, want 4h", got)
	}

	if !m.ExtendSession(ctx) {
		t.Fatalf("ExtendSession failed on a valid session")
	}
	if got := m.RemainingTime(ctx); got != sessionDomain.DefaultValidity {
		t.Fatalf("RemainingTime after extend=%v, want full window", got)
	}
	if code, ok := m.GetSession(ctx); !ok || code != "ABCD-1234" {
		t.Fatalf("extended session must stay valid, got %q,%v", code, ok)
	}

	m.ClearSession(ctx)
	if m.ExtendSession(ctx) {
		t.Fatalf("ExtendSession must fail without a session")
	}
}

func TestExtendDoesNotTouchInvalidSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, storage, _ := newTestManager(t)

	m.CreateSession(ctx, "ABCD-1234")
	s := readRecord(t, storage)
	s.Checksum = "deadbeef"
	writeRecord(t, storage, s)

	if m.ExtendSession(ctx) {
		t.Fatalf("ExtendSession must fail on tampered session")
	}
	if got := readRecord(t, storage); got.Checksum != "deadbeef" {
		t.Fatalf("ExtendSession must not mutate on failure")
	}
}

func TestIsExpiringSoon(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _, clock := newTestManager(t)

	if m.IsExpiringSoon(ctx, time.Hour) {
		t.Fatalf("no session cannot be expiring")
	}
	m.CreateSession(ctx, "ABCD-1234")
	if m.IsExpiringSoon(ctx, time.Hour) {
		t.Fatalf("fresh session is not expiring")
	}
	clock.Advance(23*time.Hour + 30*time.Minute)
	if !m.IsExpiringSoon(ctx, time.Hour) {
		t.Fatalf("session with 30m left must be expiring within 1h")
	}
	clock.Advance(time.Hour)
	if m.IsExpiringSoon(ctx, time.Hour) {
		t.Fatalf("expired session is not 'expiring soon'")
	}
}

func TestSessionEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	storage := repository.NewSessionMapStorage()
	events := NewBroadcaster()
	m := NewManager(storage, testSecret, zap.NewNop().Sugar(), WithBroadcaster(events), WithScope("tab-1"))

	var got []Event
	unsubscribe := events.Subscribe(func(e Event) { got = append(got, e) })

	m.CreateSession(ctx, "ABCD-1234")
	m.ClearSession(ctx)
	m.ClearSession(ctx)
	unsubscribe()
	m.CreateSession(ctx, "ABCD-1234")

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(got), got)
	}
	if !got[0].Authenticated || got[0].UserCode != "ABCD-1234" || got[0].Scope != "tab-1" {
		t.Fatalf("unexpected first event %+v", got[0])
	}
	if got[1].Authenticated || got[2].Authenticated {
		t.Fatalf("clear must publish deauthenticated events")
	}
}
