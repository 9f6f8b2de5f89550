package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps slots in process memory. Data is lost on restart.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		slots: make(map[string][]byte),
	}
}

func (b *MemoryBackend) Slot(namespace, key string) Slot {
	return &memorySlot{backend: b, id: namespace + "/" + key}
}

type memorySlot struct {
	backend *MemoryBackend
	id      string
}

func (s *memorySlot) Load(ctx context.Context) ([]byte, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	data, ok := s.backend.slots[s.id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *memorySlot) Save(ctx context.Context, data []byte) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	s.backend.slots[s.id] = append([]byte(nil), data...)
	return nil
}
