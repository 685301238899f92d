package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	account := &Account{
		Handle:      "alice.bsky.social",
		AppPassword: "abcd-efgh-ijkl-mnop",
	}
	require.NoError(t, manager.Store(account))

	got, err := manager.Retrieve("alice.bsky.social")
	require.NoError(t, err)
	assert.Equal(t, "alice.bsky.social", got.Handle)
	assert.Equal(t, "abcd-efgh-ijkl-mnop", got.AppPassword)
	assert.False(t, got.LastModified.IsZero())
}

func TestManagerStoreValidation(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	err := manager.Store(&Account{AppPassword: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handle is required")

	err = manager.Store(&Account{Handle: "alice.bsky.social"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app password is required")
}

func TestManagerRetrieveNotFound(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	_, err := manager.Retrieve("missing.bsky.social")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not found")
}

func TestManagerFallbackToSecondStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = ErrStoreUnavailable
	broken.RetrieveError = ErrStoreUnavailable

	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	account := &Account{Handle: "alice.bsky.social", AppPassword: "secret"}
	require.NoError(t, manager.Store(account))

	got, err := manager.Retrieve("alice.bsky.social")
	require.NoError(t, err)
	assert.Equal(t, "alice.bsky.social", got.Handle)
}

func TestManagerStoreAllBackendsFail(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = ErrStoreUnavailable

	manager := NewManagerWithStores(broken)
	err := manager.Store(&Account{Handle: "alice.bsky.social", AppPassword: "secret"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestManagerListMergesStoresMostRecentWins(t *testing.T) {
	older := NewMockStore()
	older.accounts["alice.bsky.social"] = &Account{
		Handle:       "alice.bsky.social",
		AppPassword:  "old-password",
		LastModified: time.Now().Add(-time.Hour),
	}

	newer := NewMockStore()
	newer.accounts["alice.bsky.social"] = &Account{
		Handle:       "alice.bsky.social",
		AppPassword:  "new-password",
		LastModified: time.Now(),
	}
	newer.accounts["bob.bsky.social"] = &Account{
		Handle:       "bob.bsky.social",
		AppPassword:  "bob-password",
		LastModified: time.Now(),
	}

	manager := NewManagerWithStores(older, newer)

	accounts, err := manager.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	byHandle := make(map[string]*Account)
	for _, a := range accounts {
		byHandle[a.Handle] = a
	}
	assert.Equal(t, "new-password", byHandle["alice.bsky.social"].AppPassword)
}

func TestManagerDelete(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	require.NoError(t, manager.Store(&Account{Handle: "alice.bsky.social", AppPassword: "secret"}))
	require.NoError(t, manager.Delete("alice.bsky.social"))

	_, err := manager.Retrieve("alice.bsky.social")
	require.Error(t, err)
}

func TestManagerDeleteNotFound(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())
	err := manager.Delete("missing.bsky.social")
	require.Error(t, err)
}

func TestManagerDeleteAll(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	require.NoError(t, manager.Store(&Account{Handle: "alice.bsky.social", AppPassword: "a"}))
	require.NoError(t, manager.Store(&Account{Handle: "bob.bsky.social", AppPassword: "b"}))

	require.NoError(t, manager.DeleteAll())

	accounts, err := manager.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestRetrieveDefaultPrefersEnvironment(t *testing.T) {
	t.Setenv("BSKYGRAPH_HANDLE", "env.bsky.social")
	t.Setenv("BSKYGRAPH_APP_PASSWORD", "env-password")

	fileStore := NewMockStore()
	fileStore.accounts["stored.bsky.social"] = &Account{
		Handle:      "stored.bsky.social",
		AppPassword: "stored-password",
	}

	manager := NewManagerWithStores(fileStore, NewEnvironmentStore())

	account, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "env.bsky.social", account.Handle)
}

func TestRetrieveDefaultFallsBackToStored(t *testing.T) {
	t.Setenv("BSKYGRAPH_HANDLE", "")
	t.Setenv("BSKYGRAPH_APP_PASSWORD", "")

	fileStore := NewMockStore()
	fileStore.accounts["stored.bsky.social"] = &Account{
		Handle:      "stored.bsky.social",
		AppPassword: "stored-password",
	}

	manager := NewManagerWithStores(fileStore, NewEnvironmentStore())

	account, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "stored.bsky.social", account.Handle)
}

func TestRetrieveDefaultNoCredentials(t *testing.T) {
	t.Setenv("BSKYGRAPH_HANDLE", "")
	t.Setenv("BSKYGRAPH_APP_PASSWORD", "")

	manager := NewManagerWithStores(NewMockStore(), NewEnvironmentStore())
	_, err := manager.RetrieveDefault()
	require.Error(t, err)
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("BSKYGRAPH_HANDLE", "alice.bsky.social")
	t.Setenv("BSKYGRAPH_APP_PASSWORD", "env-password")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("alice.bsky.social")
	require.NoError(t, err)
	assert.Equal(t, "env-password", account.AppPassword)

	// "default" and empty both resolve to the configured identity
	_, err = store.Retrieve("default")
	require.NoError(t, err)
	_, err = store.Retrieve("")
	require.NoError(t, err)

	// Other handles miss
	_, err = store.Retrieve("bob.bsky.social")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	// Writes are not supported
	assert.ErrorIs(t, store.Store(&Account{Handle: "x.bsky.social", AppPassword: "p"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("alice.bsky.social"), ErrStoreUnavailable)

	assert.True(t, store.Exists("alice.bsky.social"))
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("BSKYGRAPH_STORE_KEY", "test-passphrase")

	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	account := &Account{
		Handle:       "alice.bsky.social",
		AppPassword:  "abcd-efgh-ijkl-mnop",
		LastModified: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Store(account))

	got, err := store.Retrieve("alice.bsky.social")
	require.NoError(t, err)
	assert.Equal(t, account.Handle, got.Handle)
	assert.Equal(t, account.AppPassword, got.AppPassword)

	// A fresh store instance over the same file decrypts it too
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	got, err = reopened.Retrieve("alice.bsky.social")
	require.NoError(t, err)
	assert.Equal(t, "abcd-efgh-ijkl-mnop", got.AppPassword)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("BSKYGRAPH_STORE_KEY", "first-passphrase")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Handle: "alice.bsky.social", AppPassword: "secret"}))

	t.Setenv("BSKYGRAPH_STORE_KEY", "other-passphrase")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = other.Retrieve("alice.bsky.social")
	require.Error(t, err)
}

func TestEncryptedFileStoreDelete(t *testing.T) {
	t.Setenv("BSKYGRAPH_STORE_KEY", "test-passphrase")

	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Account{Handle: "alice.bsky.social", AppPassword: "a"}))
	require.NoError(t, store.Store(&Account{Handle: "bob.bsky.social", AppPassword: "b"}))

	require.NoError(t, store.Delete("alice.bsky.social"))
	assert.False(t, store.Exists("alice.bsky.social"))
	assert.True(t, store.Exists("bob.bsky.social"))

	assert.ErrorIs(t, store.Delete("alice.bsky.social"), ErrCredentialsNotFound)
}

func TestEncryptedFileStoreMissingFile(t *testing.T) {
	t.Setenv("BSKYGRAPH_STORE_KEY", "test-passphrase")

	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("alice.bsky.social")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{
		Handle:      "alice.bsky.social",
		AppPassword: "abcd-efgh-ijkl-mnop",
	}

	sanitized := SanitizeAccount(account)
	assert.Equal(t, "alice.bsky.social", sanitized.Handle)
	assert.NotEqual(t, account.AppPassword, sanitized.AppPassword)
	assert.Contains(t, sanitized.AppPassword, "*")
	// Original untouched
	assert.Equal(t, "abcd-efgh-ijkl-mnop", account.AppPassword)

	short := SanitizeAccount(&Account{Handle: "a", AppPassword: "tiny"})
	assert.Equal(t, "****", short.AppPassword)

	assert.Nil(t, SanitizeAccount(nil))
}

func TestMockStoreErrorInjection(t *testing.T) {
	store := NewMockStore()
	store.ListError = ErrStoreUnavailable

	_, err := store.List()
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
