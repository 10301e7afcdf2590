package repository

import (
	"context"
	"sync"
)

// MemorySessionStorage is an in-process key/value store with the same
// contract as RedisSessionStorage.
type MemorySessionStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewSessionMapStorage() *MemorySessionStorage {
	return &MemorySessionStorage{
		values: make(map[string]string),
	}
}

func (m *MemorySessionStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySessionStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySessionStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *MemorySessionStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// ClientMapStorage hands out one MemorySessionStorage per client id.
type ClientMapStorage struct {
	mu      sync.Mutex
	clients map[string]*MemorySessionStorage
}

func NewClientMapStorage() *ClientMapStorage {
	return &ClientMapStorage{clients: make(map[string]*MemorySessionStorage)}
}

func (c *ClientMapStorage) ForClient(clientID string) *MemorySessionStorage {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.clients[clientID]
	if !ok {
		s = NewSessionMapStorage()
		c.clients[clientID] = s
	}
	return s
}
