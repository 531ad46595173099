package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "feedharvest"
	keyringPrefix  = "session_"
)

// KeyringStore keeps the session document in the system keychain
type KeyringStore struct {
	domain string
}

// NewKeyringStore creates a keychain-backed store keyed by domain
func NewKeyringStore(domain string) *KeyringStore {
	return &KeyringStore{domain: domain}
}

func (k *KeyringStore) key() string {
	return keyringPrefix + k.domain
}

func (k *KeyringStore) Save(set *CredentialSet) error {
	if set == nil {
		return fmt.Errorf("nil credential set")
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := keyring.Set(keyringService, k.key(), string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Load() (*CredentialSet, error) {
	data, err := keyring.Get(keyringService, k.key())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: keyring: %v", ErrSessionCorrupt, err)
	}
	return decodeSession([]byte(data), k.domain)
}

func (k *KeyringStore) Clear() error {
	err := keyring.Delete(keyringService, k.key())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Location() string {
	return fmt.Sprintf("keyring:%s/%s", keyringService, k.key())
}
