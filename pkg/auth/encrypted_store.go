package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore implements CredentialStore using an encrypted file
type EncryptedFileStore struct {
	filepath   string
	passphrase string
	mu         sync.RWMutex
}

// encryptedData is the on-disk structure of the encrypted file
type encryptedData struct {
	Salt      string `json:"salt"`
	Encrypted string `json:"encrypted"`
}

// NewEncryptedFileStore creates a new encrypted file-based credential store
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	store := &EncryptedFileStore{
		filepath: filePath,
	}

	passphrase, err := store.getPassphrase()
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	store.passphrase = passphrase

	return store, nil
}

// getPassphrase derives the file passphrase. An explicit value can be
// set via BSKYGRAPH_STORE_KEY; otherwise a host-specific default is
// used so the file is at least not portable as-is.
func (e *EncryptedFileStore) getPassphrase() (string, error) {
	if key := os.Getenv("BSKYGRAPH_STORE_KEY"); key != "" {
		return key, nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "unknown"
	}

	return fmt.Sprintf("bskygraph:%s:%s", hostname, home), nil
}

// Store saves credentials to the encrypted file
func (e *EncryptedFileStore) Store(account *Account) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if account == nil || account.Handle == "" {
		return ErrInvalidCredentials
	}

	accounts, err := e.loadAccounts()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing data: %w", err)
	}
	if accounts == nil {
		accounts = make(map[string]Account)
	}

	accounts[account.Handle] = *account

	return e.saveAccounts(accounts)
}

// Retrieve gets credentials from the encrypted file
func (e *EncryptedFileStore) Retrieve(handle string) (*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if handle == "" {
		return nil, ErrInvalidCredentials
	}

	accounts, err := e.loadAccounts()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, err
	}

	account, ok := accounts[handle]
	if !ok {
		return nil, ErrCredentialsNotFound
	}

	return &account, nil
}

// List returns all accounts stored in the encrypted file
func (e *EncryptedFileStore) List() ([]*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	accounts, err := e.loadAccounts()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Account{}, nil
		}
		return nil, err
	}

	result := make([]*Account, 0, len(accounts))
	for handle := range accounts {
		account := accounts[handle]
		result = append(result, &account)
	}

	return result, nil
}

// Delete removes credentials from the encrypted file
func (e *EncryptedFileStore) Delete(handle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if handle == "" {
		return ErrInvalidCredentials
	}

	accounts, err := e.loadAccounts()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return err
	}

	if _, ok := accounts[handle]; !ok {
		return ErrCredentialsNotFound
	}

	delete(accounts, handle)

	return e.saveAccounts(accounts)
}

// Exists checks if credentials exist in the encrypted file
func (e *EncryptedFileStore) Exists(handle string) bool {
	account, err := e.Retrieve(handle)
	return err == nil && account != nil
}

// loadAccounts reads and decrypts the account map from disk
func (e *EncryptedFileStore) loadAccounts() (map[string]Account, error) {
	raw, err := os.ReadFile(e.filepath)
	if err != nil {
		return nil, err
	}

	var data encryptedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(data.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(data.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	plaintext, err := e.decrypt(ciphertext, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var accounts map[string]Account
	if err := json.Unmarshal(plaintext, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return accounts, nil
}

// saveAccounts encrypts and writes the account map to disk
func (e *EncryptedFileStore) saveAccounts(accounts map[string]Account) error {
	plaintext, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	ciphertext, err := e.encrypt(plaintext, salt)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	data := encryptedData{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal encrypted file: %w", err)
	}

	if err := os.WriteFile(e.filepath, raw, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted file: %w", err)
	}

	return nil
}

// deriveKey stretches the passphrase into an AES key with PBKDF2
func (e *EncryptedFileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// encrypt seals plaintext with AES-GCM under a key derived from salt
func (e *EncryptedFileStore) encrypt(plaintext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens an AES-GCM sealed message
func (e *EncryptedFileStore) decrypt(ciphertext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
