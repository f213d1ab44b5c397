package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mindclear"

// Keyring keys used by the data layer. The stored values are opaque to the
// engine; sign-in stores them and the app reads them back.
const (
	keyAPIToken     = "api-token"
	keyDBPassphrase = "db-passphrase"
)

// Token returns the sync API bearer token stored at sign-in.
func Token() (string, error) {
	return get(keyAPIToken)
}

// SetToken stores the sync API bearer token.
func SetToken(token string) error {
	return set(keyAPIToken, token)
}

// DeleteToken removes the stored bearer token, e.g. on sign-out.
func DeleteToken() error {
	return remove(keyAPIToken)
}

// DBPassphrase returns the passphrase protecting the local database
// encryption key on platforms that encrypt the store at rest.
func DBPassphrase() (string, error) {
	return get(keyDBPassphrase)
}

// SetDBPassphrase stores the database encryption passphrase.
func SetDBPassphrase(passphrase string) error {
	return set(keyDBPassphrase, passphrase)
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mindclear/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mindclear-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

func set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

func remove(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
