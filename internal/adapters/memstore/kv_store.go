package memstore

import (
	"context"
	"property-explorer/internal/core/port"
	"sort"
	"strings"
	"sync"
)

// KVStore - хранилище в памяти процесса. Используется по умолчанию и в тестах.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ port.KeyValueStore = (*KVStore)(nil)

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, port.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *KVStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *KVStore) Close() error { return nil }
