package crypto

import "os"

func envKey() string {
	return os.Getenv(KeyEnv)
}
