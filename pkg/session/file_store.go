package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"feedharvest/pkg/storage"
)

// FileStore keeps the session as a plain JSON document
type FileStore struct {
	path   string
	domain string
}

// NewFileStore creates a file-backed store. domain fills in the set's
// domain when a legacy cookie array is loaded.
func NewFileStore(path, domain string) *FileStore {
	return &FileStore{path: path, domain: domain}
}

func (f *FileStore) Save(set *CredentialSet) error {
	if set == nil {
		return fmt.Errorf("nil credential set")
	}
	if err := storage.WriteJSONAtomic(f.path, 0600, set); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (f *FileStore) Load() (*CredentialSet, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	return decodeSession(data, f.domain)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Location() string {
	return f.path
}

// decodeSession accepts either a CredentialSet document or a bare array
// of cookies.
func decodeSession(data []byte, domain string) (*CredentialSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrSessionCorrupt)
	}

	if trimmed[0] == '[' {
		var creds []Credential
		if err := json.Unmarshal(trimmed, &creds); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
		}
		return NewCredentialSet(domain, creds, time.Time{}), nil
	}

	var set CredentialSet
	if err := json.Unmarshal(trimmed, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	if set.Domain == "" {
		set.Domain = domain
	}
	return &set, nil
}
