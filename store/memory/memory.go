package memory

import (
	"slices"
	"sync"

	"go.hackfix.me/rastore/store"
)

// Memory is a store.Engine that keeps all data in a map. Data is lost when the
// process exits.
type Memory struct {
	store.Listeners

	mx   sync.RWMutex
	data map[string]string
}

var _ store.Engine = &Memory{}

// New returns an empty in-memory engine.
func New() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) GetString(key string) (string, bool, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mx.Lock()
	m.data[key] = value
	m.mx.Unlock()

	m.Notify(key)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mx.Lock()
	delete(m.data, key)
	m.mx.Unlock()

	m.Notify(key)
	return nil
}

// AllKeys returns all keys in lexical order.
func (m *Memory) AllKeys() ([]string, error) {
	m.mx.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	m.mx.RUnlock()

	slices.Sort(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	return nil
}
