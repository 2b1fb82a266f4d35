//go:build darwin

package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

type darwinKeyring struct{}

func newPlatformKeyring() Keyring {
	return &darwinKeyring{}
}

// GetKey prefers JOBCLOCK_DB_KEY so servers and scripts can run unattended,
// then falls back to the login keychain
func (k *darwinKeyring) GetKey() (string, error) {
	if key := envKey(); key != "" {
		return key, nil
	}

	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("encryption key not found in keychain: %w", err)
		}
		return "", fmt.Errorf("failed to read keychain: %w", err)
	}
	if key == "" {
		return "", errors.New("encryption key is empty")
	}
	return key, nil
}

func (k *darwinKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to store key in keychain: %w", err)
	}
	return nil
}

func (k *darwinKeyring) DeleteKey() error {
	if err := keyring.Delete(ServiceName, KeyName); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete key from keychain: %w", err)
	}
	return nil
}

func (k *darwinKeyring) IsAvailable() bool {
	canary := "__jobclock_canary__"
	if err := keyring.Set(ServiceName, canary, "x"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, canary)
	return true
}
