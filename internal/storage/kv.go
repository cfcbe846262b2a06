package storage

import (
	"context"
	"sync"
)

// KV is a string key-value store scoped to one device, the server-side
// stand-in for browser local storage.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key the device owns.
	Clear(ctx context.Context) error
}

// Factory opens the KV for a device.
type Factory func(deviceID string) KV

// Memory is an in-process KV.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// MemoryFactory hands out one Memory per device and keeps it for the
// lifetime of the process.
func MemoryFactory() Factory {
	var mu sync.Mutex
	stores := make(map[string]*Memory)
	return func(deviceID string) KV {
		mu.Lock()
		defer mu.Unlock()
		m, ok := stores[deviceID]
		if !ok {
			m = NewMemory()
			stores[deviceID] = m
		}
		return m
	}
}
