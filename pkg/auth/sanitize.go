package auth

import "strings"

// IsKeyringAvailable reports whether the system keyring backend works
// on this machine.
func IsKeyringAvailable() bool {
	_, err := NewKeyringStore()
	return err == nil
}

// SanitizeAccount returns a copy of the account with the app password
// masked for display.
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	clone := *account
	clone.AppPassword = maskSecret(account.AppPassword)
	return &clone
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
