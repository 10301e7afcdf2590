package session

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"edu_progress/internal/repository"
)

func TestRegistryIsolatesClients(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var mu sync.Mutex
	stores := map[string]*repository.MemorySessionStorage{}
	storage := func(clientID string) Storage {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[clientID]
		if !ok {
			s = repository.NewSessionMapStorage()
			stores[clientID] = s
		}
		return s
	}
	reg := NewRegistry(storage, testSecret, zap.NewNop().Sugar())

	var scopes []string
	reg.Events().Subscribe(func(e Event) { scopes = append(scopes, e.Scope) })

	if !reg.ForClient("a").CreateSession(ctx, "AAAA-1111") {
		t.Fatalf("CreateSession for client a failed")
	}
	if _, ok := reg.ForClient("b").GetSession(ctx); ok {
		t.Fatalf("client b must not see client a's session")
	}
	code, ok := reg.ForClient("a").GetSession(ctx)
	if !ok || code != "AAAA-1111" {
		t.Fatalf("client a session=%q,%v", code, ok)
	}
	reg.ForClient("b").ClearSession(ctx)

	if len(scopes) != 2 || scopes[0] != "a" || scopes[1] != "b" {
		t.Fatalf("event scopes=%v, want [a b]", scopes)
	}
}
