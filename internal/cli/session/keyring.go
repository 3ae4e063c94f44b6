package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	service = "cropwise-cli"
)

// getKeyringKey returns a unique key for storing the session per API endpoint
func getKeyringKey(endpoint string) string {
	return fmt.Sprintf("session-%s", endpoint)
}

// KeyringStore persists the session in the OS keychain/credential manager.
// The whole session is one keyring entry, so Save and Clear are single writes.
// mu serializes writers so a Clear cannot fall inside SetAccessToken's
// read-modify-write.
type KeyringStore struct {
	key string
	mu  sync.Mutex
}

// NewKeyringStore creates a keyring-backed store scoped to an API endpoint
func NewKeyringStore(endpoint string) *KeyringStore {
	return &KeyringStore{key: getKeyringKey(endpoint)}
}

// KeyringAvailable reports whether the OS keychain can be used at all
func KeyringAvailable() bool {
	_, err := keyring.Get(service, "probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func (k *KeyringStore) Save(s Session) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.write(s)
}

func (k *KeyringStore) write(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.Set(service, k.key, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (k *KeyringStore) Load() (Session, error) {
	data, err := keyring.Get(service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse stored session: %w", err)
	}
	return s, nil
}

func (k *KeyringStore) Get(f Field) (string, bool) {
	s, err := k.Load()
	if err != nil {
		return "", false
	}
	return s.Value(f)
}

func (k *KeyringStore) SetAccessToken(token string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	s, err := k.Load()
	if err != nil {
		return err
	}
	s.AccessToken = token
	return k.write(s)
}

func (k *KeyringStore) Clear() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Delete(service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already cleared
		}
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (k *KeyringStore) IsActive() bool {
	s, err := k.Load()
	if err != nil {
		return false
	}
	return s.Active()
}
