// Package crypto stores the SQLCipher passphrase outside the config file.
package crypto

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "jobclock"
	KeyName     = "db-encryption-key"

	// KeyEnv holds the passphrase where no system keyring exists
	KeyEnv = "JOBCLOCK_DB_KEY"
)

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}
