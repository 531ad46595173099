package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"feedharvest/pkg/config"
	"feedharvest/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func sampleSet() *CredentialSet {
	return NewCredentialSet("x.com", []Credential{
		{Name: "auth_token", Value: "0123456789abcdef", Domain: ".x.com", Path: "/", Secure: true, HTTPOnly: true},
		{Name: "ct0", Value: "csrf-token-value", Domain: ".x.com", Path: "/"},
		{Name: "guest_id", Value: "v1", Domain: ".twitter.com", Path: "/"},
	}, time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC))
}

type recordingSetter struct {
	got    []Credential
	reject map[string]bool
}

func (r *recordingSetter) SetCredential(ctx context.Context, c Credential) error {
	if r.reject[c.Name] {
		return errors.New("rejected")
	}
	r.got = append(r.got, c)
	return nil
}

func TestNewCredentialSetDedupesAndSorts(t *testing.T) {
	set := NewCredentialSet("x.com", []Credential{
		{Name: "b", Value: "1", Domain: ".x.com"},
		{Name: "a", Value: "1", Domain: ".x.com"},
		{Name: "b", Value: "2", Domain: ".x.com"},
	}, time.Now())

	require.Len(t, set.Credentials, 2)
	assert.Equal(t, "a", set.Credentials[0].Name)
	assert.Equal(t, "2", set.Credentials[1].Value)
}

func TestHasAuthMarker(t *testing.T) {
	set := sampleSet()
	assert.True(t, HasAuthMarker(set, "auth_token"))
	assert.False(t, HasAuthMarker(set, "missing"))
	assert.False(t, HasAuthMarker(nil, "auth_token"))

	empty := NewCredentialSet("x.com", []Credential{{Name: "auth_token", Value: ""}}, time.Now())
	assert.False(t, HasAuthMarker(empty, "auth_token"))
}

func TestApplyRewritesForeignDomains(t *testing.T) {
	setter := &recordingSetter{}
	n := Apply(context.Background(), sampleSet(), "x.com", setter, logger.NewTestLogger())

	assert.Equal(t, 3, n)
	for _, c := range setter.got {
		assert.Equal(t, ".x.com", c.Domain, c.Name)
	}
}

func TestApplySwallowsIndividualFailures(t *testing.T) {
	setter := &recordingSetter{reject: map[string]bool{"ct0": true}}
	log := logger.NewTestLogger()

	n := Apply(context.Background(), sampleSet(), "x.com", setter, log)

	assert.Equal(t, 2, n)
	assert.True(t, log.HasMessage("credential rejected"))
}

func TestSanitize(t *testing.T) {
	set := sampleSet()
	clean := Sanitize(set)

	auth, ok := clean.Get("auth_token")
	require.True(t, ok)
	assert.Equal(t, "0123...cdef", auth.Value)

	guest, _ := clean.Get("guest_id")
	assert.Equal(t, "********", guest.Value)

	orig, _ := set.Get("auth_token")
	assert.Equal(t, "0123456789abcdef", orig.Value)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_cookies.json")
	store := NewFileStore(path, "x.com")

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(sampleSet()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSet(), loaded)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, store.Clear())
}

func TestFileStoreLegacyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_cookies.json")
	legacy := `[
  {"name": "auth_token", "value": "abc", "domain": ".x.com", "path": "/", "secure": true, "httpOnly": true, "expiry": 1781000000, "sameSite": "None"},
  {"name": "lang", "value": "es", "domain": "x.com", "path": "/"}
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0600))

	set, err := NewFileStore(path, "x.com").Load()
	require.NoError(t, err)
	assert.Equal(t, "x.com", set.Domain)
	require.Len(t, set.Credentials, 2)

	auth, ok := set.Get("auth_token")
	require.True(t, ok)
	assert.True(t, auth.HTTPOnly)
	assert.Equal(t, "None", auth.SameSite)
	assert.Equal(t, float64(1781000000), auth.Expires)
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"garbage.json": "{not json",
		"empty.json":   "   ",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		_, err := NewFileStore(path, "x.com").Load()
		assert.ErrorIs(t, err, ErrSessionCorrupt, name)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore("x.com")

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(sampleSet()))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.True(t, HasAuthMarker(loaded, "auth_token"))

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(passphraseEnv, "correct horse battery staple")
	path := filepath.Join(t.TempDir(), "session.enc")

	store, err := NewEncryptedFileStore(path, "x.com")
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(sampleSet()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "0123456789abcdef")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleSet(), loaded)

	t.Setenv(passphraseEnv, "wrong passphrase")
	other, err := NewEncryptedFileStore(path, "x.com")
	require.NoError(t, err)
	_, err = other.Load()
	assert.ErrorIs(t, err, ErrSessionCorrupt)
}

func TestEncryptedFileStoreGeneratesPassphraseFile(t *testing.T) {
	t.Setenv(passphraseEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "session.enc")

	first, err := NewEncryptedFileStore(path, "x.com")
	require.NoError(t, err)
	require.NoError(t, first.Save(sampleSet()))

	_, err = os.Stat(filepath.Join(dir, passphraseFile))
	require.NoError(t, err)

	second, err := NewEncryptedFileStore(path, "x.com")
	require.NoError(t, err)
	loaded, err := second.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Credentials, 3)
}

func TestNewStore(t *testing.T) {
	t.Setenv(passphraseEnv, "pw")
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    interface{}
		wantErr bool
	}{
		{"file", &FileStore{}, false},
		{"File", &FileStore{}, false},
		{" KEYRING ", &KeyringStore{}, false},
		{"", &FileStore{}, false},
		{"keyring", &KeyringStore{}, false},
		{"encrypted", &EncryptedFileStore{}, false},
		{"s3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			store, err := NewStore(config.SessionConfig{Backend: tt.backend, File: filepath.Join(dir, "s.json")}, "x.com")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore(nil)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(sampleSet()))
	assert.Equal(t, 1, store.Saves())

	store.LoadError = ErrSessionCorrupt
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrSessionCorrupt)
}
