package kvstore

import (
	"context"
	"sync"

	"github.com/JCBT04/Capstone/core"
)

// InMem is a process-local KV for DEV and tests.
type InMem struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ core.KV = (*InMem)(nil) // interface compliance check

func NewInMem() *InMem {
	return &InMem{table: make(map[string]string)}
}

func (s *InMem) GetItem(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.table[key]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	return value, nil
}

func (s *InMem) SetItem(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.table[key] = value
	return nil
}

func (s *InMem) RemoveItem(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.table, key)
	return nil
}
