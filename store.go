package osformula

import (
	"fmt"
	"sync"
)

// Store is the key/value store shared by the checks of one scenario run.
type Store struct {
	items map[string]interface{}
	mu    sync.Mutex
}

func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

func (s *Store) Get(key string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	return value, nil
}

// Load returns the value stored under key as a T.
func Load[T any](s *Store, key string) (T, error) {
	var zero T
	value, err := s.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("key %s holds %T, not %T", key, value, zero)
	}
	return typed, nil
}

func NewStore() *Store {
	return &Store{
		items: make(map[string]interface{}),
	}
}
