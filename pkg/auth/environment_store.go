package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and exposes at most one account.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment variable-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(handle string) (*Account, error) {
	envHandle := os.Getenv("BSKYGRAPH_HANDLE")
	password := os.Getenv("BSKYGRAPH_APP_PASSWORD")

	if envHandle == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}

	// The environment holds a single identity, so any requested handle
	// other than that identity (or "default") is a miss.
	if handle != "" && handle != "default" && handle != envHandle {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Handle:       envHandle,
		AppPassword:  password,
		LastModified: time.Now(),
	}, nil
}

// List returns the environment account if one is configured
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("default")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(handle string) error {
	return ErrStoreUnavailable
}

// Exists checks if credentials exist in environment variables
func (e *EnvironmentStore) Exists(handle string) bool {
	account, err := e.Retrieve(handle)
	return err == nil && account != nil
}
