package secret

import (
	"os"
	"strings"
)

// EnvPrefix is prepended to the upper-cased key, so "storage" is read
// from BOARDS_SECRET_STORAGE.
const EnvPrefix = "BOARDS_SECRET_"

// EnvStore reads secrets from environment variables.
type EnvStore struct{}

// EnvKey returns the environment variable that holds key.
func EnvKey(key string) string {
	key = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(key)
	return EnvPrefix + strings.ToUpper(key)
}

func (EnvStore) Get(key string) ([]byte, error) {
	return []byte(os.Getenv(EnvKey(key))), nil
}

func (EnvStore) Set(string, []byte) error { return ErrReadOnly }

func (EnvStore) Delete(string) error { return ErrReadOnly }

// Default returns the environment, then the macOS Keychain where one is
// available.
func Default() Store {
	if keychainAvailable() {
		return Chain{EnvStore{}, NewKeychainStore()}
	}
	return Chain{EnvStore{}}
}
