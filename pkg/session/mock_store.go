package session

import "sync"

// MockStore is an in-memory Store for tests
type MockStore struct {
	mu    sync.Mutex
	set   *CredentialSet
	saves int

	SaveError error
	LoadError error
}

// NewMockStore creates a mock store, optionally preloaded
func NewMockStore(set *CredentialSet) *MockStore {
	return &MockStore{set: set}
}

func (m *MockStore) Save(set *CredentialSet) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *set
	cp.Credentials = append([]Credential(nil), set.Credentials...)
	m.set = &cp
	m.saves++
	return nil
}

func (m *MockStore) Load() (*CredentialSet, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.set == nil {
		return nil, ErrSessionNotFound
	}
	cp := *m.set
	cp.Credentials = append([]Credential(nil), m.set.Credentials...)
	return &cp, nil
}

func (m *MockStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = nil
	return nil
}

func (m *MockStore) Location() string {
	return "memory"
}

// Saves returns how many times Save succeeded
func (m *MockStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
