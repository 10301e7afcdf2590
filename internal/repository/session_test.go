package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestRedisStorage(t *testing.T, ttl time.Duration) (*RedisSessionStorage, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRedisStorage(client, zap.NewNop().Sugar(), ttl), server
}

func TestRedisSessionStorageRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, server := newTestRedisStorage(t, time.Hour)

	if _, ok, err := s.Get(ctx, "edu_session"); ok || err != nil {
		t.Fatalf("Get(missing)=%v,%v, want not found", ok, err)
	}
	if err := s.Set(ctx, "edu_session", `{"userCode":"ABCD-1234"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "edu_session_timestamp", "1775120400000"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := s.Get(ctx, "edu_session"); !ok || err != nil || v != `{"userCode":"ABCD-1234"}` {
		t.Fatalf("Get=%q,%v,%v", v, ok, err)
	}
	if ttl := server.TTL("edu_session"); ttl != time.Hour {
		t.Fatalf("ttl=%v, want 1h", ttl)
	}

	if err := s.Delete(ctx, "edu_session", "edu_session_timestamp", "absent"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if keys := server.Keys(); len(keys) != 0 {
		t.Fatalf("keys after delete=%v", keys)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete with no keys: %v", err)
	}
}

func TestRedisSessionStorageExpires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, server := newTestRedisStorage(t, time.Minute)

	if err := s.Set(ctx, "edu_session", "record"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	server.FastForward(2 * time.Minute)
	if _, ok, err := s.Get(ctx, "edu_session"); ok || err != nil {
		t.Fatalf("Get after ttl=%v,%v, want not found", ok, err)
	}
}

func TestRedisSessionStorageScopesKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base, server := newTestRedisStorage(t, time.Hour)
	a := base.ForClient("one")
	b := base.ForClient("two")

	if err := a.Set(ctx, "edu_session", "alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := server.Get("client:one:edu_session"); err != nil || v != "alice" {
		t.Fatalf("stored key=%q,%v", v, err)
	}
	if _, ok, _ := b.Get(ctx, "edu_session"); ok {
		t.Fatalf("different clients must not share keys")
	}
	if _, ok, _ := base.Get(ctx, "edu_session"); ok {
		t.Fatalf("unscoped storage must not see scoped keys")
	}

	if err := b.Delete(ctx, "edu_session"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !server.Exists("client:one:edu_session") {
		t.Fatalf("deleting in one scope removed another client's key")
	}
}

func TestRedisSessionStorageSurfacesErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, server := newTestRedisStorage(t, time.Hour)

	server.SetError("ERR backend unavailable")
	if _, ok, err := s.Get(ctx, "edu_session"); ok || err == nil {
		t.Fatalf("Get=%v,%v, want error", ok, err)
	}
	if err := s.Set(ctx, "edu_session", "x"); err == nil {
		t.Fatalf("Set must fail")
	}
	if err := s.Delete(ctx, "edu_session"); err == nil {
		t.Fatalf("Delete must fail")
	}
}
