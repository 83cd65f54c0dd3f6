package secret

import "errors"

// ErrReadOnly is returned by stores that can't be written, such as the
// environment.
var ErrReadOnly = errors.New("secret store is read-only")

// Store holds sensitive values such as storage backend passwords.
type Store interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Chain reads from each store in turn and writes to the first one that
// accepts the write.
type Chain []Store

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Set(key string, value []byte) error {
	for _, s := range c {
		err := s.Set(key, value)
		if errors.Is(err, ErrReadOnly) {
			continue
		}
		return err
	}
	return ErrReadOnly
}

func (c Chain) Delete(key string) error {
	for _, s := range c {
		if err := s.Delete(key); err != nil && !errors.Is(err, ErrReadOnly) {
			return err
		}
	}
	return nil
}
