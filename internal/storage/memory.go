package storage

// MemoryStore keeps values in a map. Nothing survives Close.
type MemoryStore struct {
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
