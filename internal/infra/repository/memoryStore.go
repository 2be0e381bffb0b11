package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	Irepository "session-monitor/internal/domain/interfaces/repository"
)

// MemoryStore is a map-backed ObjectStore for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (r *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	r.objects[key] = stored
	return nil
}

func (r *MemoryStore) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.objects[key]
	if !ok {
		return nil, Irepository.ErrObjectNotFound
	}
	return data, nil
}

func (r *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.objects[key]
	return ok, nil
}

func (r *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for key := range r.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
