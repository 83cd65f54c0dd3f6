package secret

import (
	"errors"
	"testing"
)

type mapStore map[string]string

func (m mapStore) Get(key string) ([]byte, error) { return []byte(m[key]), nil }

func (m mapStore) Set(key string, value []byte) error {
	m[key] = string(value)
	return nil
}

func (m mapStore) Delete(key string) error {
	delete(m, key)
	return nil
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"storage":      "BOARDS_SECRET_STORAGE",
		"prod-db.pass": "BOARDS_SECRET_PROD_DB_PASS",
	}
	for in, want := range tests {
		if got := EnvKey(in); got != want {
			t.Errorf("EnvKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChain_EnvWinsOverLaterStores(t *testing.T) {
	t.Setenv("BOARDS_SECRET_STORAGE", "from-env")
	kept := mapStore{"storage": "from-keychain", "other": "x"}
	c := Chain{EnvStore{}, kept}

	v, _ := c.Get("storage")
	if string(v) != "from-env" {
		t.Errorf("Get(storage) = %q", v)
	}
	v, _ = c.Get("other")
	if string(v) != "x" {
		t.Errorf("Get(other) = %q", v)
	}
	v, _ = c.Get("missing")
	if len(v) != 0 {
		t.Errorf("Get(missing) = %q", v)
	}
}

func TestChain_WritesSkipReadOnly(t *testing.T) {
	kept := mapStore{}
	c := Chain{EnvStore{}, kept}
	if err := c.Set("storage", []byte("pw")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if kept["storage"] != "pw" {
		t.Errorf("write did not reach the writable store: %v", kept)
	}
	if err := c.Delete("storage"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := kept["storage"]; ok {
		t.Error("Delete left the value behind")
	}
	if err := (Chain{EnvStore{}}).Set("k", nil); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Set on env-only chain = %v, want ErrReadOnly", err)
	}
}
