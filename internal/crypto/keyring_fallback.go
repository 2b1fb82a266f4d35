//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
)

type fallbackKeyring struct{}

func newPlatformKeyring() Keyring {
	return &fallbackKeyring{}
}

// GetKey reads the passphrase from JOBCLOCK_DB_KEY
func (k *fallbackKeyring) GetKey() (string, error) {
	key := envKey()
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", KeyEnv)
	}
	return key, nil
}

func (k *fallbackKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	return fmt.Errorf("no keyring on this platform: export %s to reuse this password", KeyEnv)
}

func (k *fallbackKeyring) DeleteKey() error {
	return fmt.Errorf("no keyring on this platform: unset %s manually", KeyEnv)
}

func (k *fallbackKeyring) IsAvailable() bool {
	return envKey() != ""
}
