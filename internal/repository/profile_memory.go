package repository

import (
	"context"
	"errors"
	"sync"

	"edu_progress/internal/domain/profile"
	errs "edu_progress/internal/errors"
)

// MemoryProfileStorage keeps profiles in process memory. Updates hold the
// write lock for the whole read-modify-write, so they are serialized.
type MemoryProfileStorage struct {
	mu       sync.RWMutex
	profiles map[string]profile.UserProfile
}

func NewMapProfileStorage() *MemoryProfileStorage {
	return &MemoryProfileStorage{profiles: make(map[string]profile.UserProfile)}
}

func (m *MemoryProfileStorage) Get(_ context.Context, code string) (profile.UserProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[code]
	if !ok {
		return profile.UserProfile{}, false, nil
	}
	return p.Clone(), true, nil
}

func (m *MemoryProfileStorage) Exists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.profiles[code]
	return ok, nil
}

func (m *MemoryProfileStorage) Insert(_ context.Context, p profile.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.Code]; ok {
		return errs.ErrDuplicateCode
	}
	p.Version = 1
	m.profiles[p.Code] = p.Clone()
	return nil
}

func (m *MemoryProfileStorage) AtomicUpdate(_ context.Context, code string, mutate func(*profile.UserProfile) error) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.profiles[code]
	if !ok {
		return false, nil
	}
	next := current.Clone()
	if err := mutate(&next); err != nil {
		if errors.Is(err, errs.ErrNoChange) {
			return true, nil
		}
		return true, err
	}
	next.Code = current.Code
	next.Version = current.Version + 1
	m.profiles[code] = next
	return true, nil
}
