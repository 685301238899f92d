package auth

import (
	"sync"
)

// MockStore implements CredentialStore for testing
type MockStore struct {
	accounts map[string]*Account
	mu       sync.RWMutex

	// Error injection for tests
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		accounts: make(map[string]*Account),
	}
}

// Store saves credentials to the mock store
func (m *MockStore) Store(account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreError != nil {
		return m.StoreError
	}

	if account == nil || account.Handle == "" {
		return ErrInvalidCredentials
	}

	clone := *account
	m.accounts[account.Handle] = &clone
	return nil
}

// Retrieve gets credentials from the mock store
func (m *MockStore) Retrieve(handle string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	account, ok := m.accounts[handle]
	if !ok {
		return nil, ErrCredentialsNotFound
	}

	clone := *account
	return &clone, nil
}

// List returns all accounts in the mock store
func (m *MockStore) List() ([]*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListError != nil {
		return nil, m.ListError
	}

	result := make([]*Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		clone := *account
		result = append(result, &clone)
	}
	return result, nil
}

// Delete removes credentials from the mock store
func (m *MockStore) Delete(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return m.DeleteError
	}

	if _, ok := m.accounts[handle]; !ok {
		return ErrCredentialsNotFound
	}

	delete(m.accounts, handle)
	return nil
}

// Exists checks if credentials exist in the mock store
func (m *MockStore) Exists(handle string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.accounts[handle]
	return ok
}
