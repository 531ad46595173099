package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"feedharvest/pkg/config"
	"feedharvest/pkg/logger"
)

var (
	// ErrSessionNotFound means no session has been persisted yet
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCorrupt means a persisted session exists but cannot be decoded
	ErrSessionCorrupt = errors.New("session corrupt")
)

// Credential is one browser cookie. JSON field names match the cookie
// layout exported by browser drivers so legacy files decode directly.
type Credential struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
	Expires  float64 `json:"expiry,omitempty"`
}

// CredentialSet is everything needed to resume an authenticated session
type CredentialSet struct {
	Domain      string       `json:"domain"`
	SavedAt     time.Time    `json:"saved_at"`
	Credentials []Credential `json:"credentials"`
}

// NewCredentialSet builds a set, keeping the last credential for each
// (name, domain, path) and ordering by name.
func NewCredentialSet(domain string, creds []Credential, savedAt time.Time) *CredentialSet {
	type ident struct{ name, domain, path string }
	seen := make(map[ident]int, len(creds))
	var out []Credential
	for _, c := range creds {
		id := ident{c.Name, c.Domain, c.Path}
		if i, ok := seen[id]; ok {
			out[i] = c
			continue
		}
		seen[id] = len(out)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return &CredentialSet{Domain: domain, SavedAt: savedAt, Credentials: out}
}

// Get returns the first credential with the given name
func (s *CredentialSet) Get(name string) (Credential, bool) {
	if s == nil {
		return Credential{}, false
	}
	for _, c := range s.Credentials {
		if c.Name == name {
			return c, true
		}
	}
	return Credential{}, false
}

// Store persists a credential set
type Store interface {
	Save(set *CredentialSet) error
	// Load returns ErrSessionNotFound or ErrSessionCorrupt (possibly wrapped)
	// when no usable session exists.
	Load() (*CredentialSet, error)
	Clear() error
	// Location describes where the session lives, for display
	Location() string
}

// CredentialSetter receives credentials, typically a render surface
type CredentialSetter interface {
	SetCredential(ctx context.Context, c Credential) error
}

// HasAuthMarker reports whether the marker credential is present and non-empty
func HasAuthMarker(set *CredentialSet, marker string) bool {
	c, ok := set.Get(marker)
	return ok && c.Value != ""
}

// Apply pushes every credential in set to the setter. Credentials whose
// domain does not end with targetDomain are rewritten to ".<targetDomain>".
// Individual failures are logged and skipped; the number applied is returned.
func Apply(ctx context.Context, set *CredentialSet, targetDomain string, setter CredentialSetter, log logger.Logger) int {
	if set == nil {
		return 0
	}
	if log == nil {
		log = logger.GetLogger()
	}

	applied := 0
	for _, c := range set.Credentials {
		if ctx.Err() != nil {
			break
		}
		if !strings.HasSuffix(c.Domain, targetDomain) {
			c.Domain = "." + targetDomain
		}
		if err := setter.SetCredential(ctx, c); err != nil {
			log.WithError(err).DebugWithFields("credential rejected", map[string]interface{}{
				"name":   c.Name,
				"domain": c.Domain,
			})
			continue
		}
		applied++
	}
	return applied
}

// Sanitize returns a copy of set with every value masked
func Sanitize(set *CredentialSet) *CredentialSet {
	if set == nil {
		return nil
	}
	out := *set
	out.Credentials = make([]Credential, len(set.Credentials))
	for i, c := range set.Credentials {
		c.Value = maskString(c.Value)
		out.Credentials[i] = c
	}
	return &out
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// NewStore returns the backend selected by cfg.Backend
func NewStore(cfg config.SessionConfig, domain string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		return NewFileStore(cfg.File, domain), nil
	case "keyring":
		return NewKeyringStore(domain), nil
	case "encrypted":
		return NewEncryptedFileStore(cfg.File, domain)
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Backend)
	}
}
