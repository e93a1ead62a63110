// Package auth stores TikTok login sessions (cookie jars) so a scrape can run
// as a logged-in viewer.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring entries
	KeyringService = "tokscrape"
	// FallbackDir is where sessions live when no keyring is available
	FallbackDir = ".tokscrape/sessions"

	manifestKey = "_manifest"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrEmptyName       = errors.New("session name cannot be empty")
)

// Cookie is a browser cookie as captured after login
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Session is a named cookie jar
type Session struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the session has a known expiry before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// ExpiryFromCookies returns the latest cookie expiry, or the zero time when
// every cookie is a session cookie.
func ExpiryFromCookies(cookies []Cookie) time.Time {
	var latest float64
	for _, c := range cookies {
		if c.Expires > latest {
			latest = c.Expires
		}
	}
	if latest <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(latest), 0)
}

// Store persists sessions by name.
type Store interface {
	Save(s *Session) error
	Load(name string) (*Session, error)
	Delete(name string) error
	List() ([]string, error)
}

// DefaultStore picks the OS keyring when it is usable and falls back to files
// under the home directory otherwise (CI, containers, Codespaces).
func DefaultStore() (Store, error) {
	if keyringUsable() {
		return KeyringStore{}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return NewFileStore(filepath.Join(home, FallbackDir)), nil
}

func keyringUsable() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return false
	}
	check := "_keyring_check_"
	if err := keyring.Set(KeyringService, check, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, check)
	return true
}

// LoadValid loads a session and rejects expired ones.
func LoadValid(store Store, name string) (*Session, error) {
	s, err := store.Load(name)
	if err != nil {
		return nil, err
	}
	if s.Expired(time.Now()) {
		return nil, fmt.Errorf("%q: %w", name, ErrSessionExpired)
	}
	return s, nil
}

// KeyringStore keeps each session as one keyring secret plus a manifest of names.
type KeyringStore struct{}

func (KeyringStore) Save(s *Session) error {
	if s.Name == "" {
		return ErrEmptyName
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}
	if err := keyring.Set(KeyringService, s.Name, string(data)); err != nil {
		return fmt.Errorf("save to keyring: %w", err)
	}
	return updateManifest(s.Name, true)
}

func (KeyringStore) Load(name string) (*Session, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	data, err := keyring.Get(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("%q: %w", name, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load from keyring: %w", err)
	}
	return decode([]byte(data))
}

func (KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if err := keyring.Delete(KeyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete from keyring: %w", err)
	}
	return updateManifest(name, false)
}

func (KeyringStore) List() ([]string, error) {
	data, err := keyring.Get(KeyringService, manifestKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return names, nil
}

func updateManifest(name string, add bool) error {
	names, err := KeyringStore{}.List()
	if err != nil {
		return err
	}
	idx := slices.Index(names, name)
	switch {
	case add && idx < 0:
		names = append(names, name)
	case !add && idx >= 0:
		names = slices.Delete(names, idx, idx+1)
	default:
		return nil
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, manifestKey, string(data))
}

// FileStore keeps sessions as <dir>/<name>.json with owner-only permissions.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid session name %q", name)
	}
	return filepath.Join(f.dir, name+".json"), nil
}

func (f *FileStore) Save(s *Session) error {
	p, err := f.path(s.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}
	if err := os.WriteFile(p, data, 0600); err != nil {
		return fmt.Errorf("save session file: %w", err)
	}
	return nil
}

func (f *FileStore) Load(name string) (*Session, error) {
	p, err := f.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", name, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session file: %w", err)
	}
	return decode(data)
}

func (f *FileStore) Delete(name string) error {
	p, err := f.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

func (f *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return names, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
