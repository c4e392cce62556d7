package storage

import (
	"context"
	"sync"
)

// Memory is an in-process store used by tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Save(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[objectPath] = buf
	return objectPath, nil
}

func (m *Memory) Remove(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectPath]; !ok {
		return ErrNotFound
	}
	delete(m.objects, objectPath)
	return nil
}

func (m *Memory) PublicURL(objectPath string) string {
	return "/uploads/" + objectPath
}

// Get returns a stored payload, for assertions.
func (m *Memory) Get(objectPath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectPath]
	return data, ok
}

// Len reports how many objects the store holds.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
