// Package auth manages Bluesky account credentials across multiple
// storage backends.
//
// Credentials are app passwords keyed by handle. The Manager tries
// each configured backend in order: the system keyring when one is
// available, an encrypted file under the user config directory, and
// read-only environment variables as a last resort. Writes go to the
// first backend that accepts them; reads fall through until a backend
// answers.
package auth
