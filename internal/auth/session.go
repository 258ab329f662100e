// Package auth captures and stores browser sessions so a crawl can reuse the
// cookies of a previously solved challenge or login.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "listcrawl"
	// FallbackDir is the file-based storage directory under the user's home
	FallbackDir = ".listcrawl/sessions"

	manifestKey = "_manifest"
)

// ErrExpired is returned when every cookie of a stored session has expired.
var ErrExpired = errors.New("session expired")

// Session is a named set of cookies captured from a browser.
type Session struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	UserAgent string    `json:"user_agent,omitempty"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cookie represents a browser cookie
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

// Store persists sessions in the OS keyring, or in a directory of JSON files
// where no keyring is available (CI, containers).
type Store struct {
	dir      string
	useFiles bool
}

// NewStore picks the keyring when it is usable and dir otherwise. An empty dir
// defaults to FallbackDir under the home directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		dir = filepath.Join(home, FallbackDir)
	}
	return &Store{dir: dir, useFiles: !keyringUsable()}, nil
}

// NewFileStore always stores sessions as files in dir.
func NewFileStore(dir string) *Store {
	return &Store{dir: dir, useFiles: true}
}

func keyringUsable() bool {
	if os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "" {
		return false
	}
	probe := "_probe_"
	if err := keyring.Set(KeyringService, probe, "ok"); err != nil {
		return false
	}
	keyring.Delete(KeyringService, probe)
	return true
}

// Backend names where sessions are kept
func (s *Store) Backend() string {
	if s.useFiles {
		return "file:" + s.dir
	}
	return "keyring"
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if name == manifestKey || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid session name %q", name)
	}
	return nil
}

// Save stores the session under its name, replacing any previous one.
func (s *Store) Save(session *Session) error {
	if err := validName(session.Name); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if s.useFiles {
		if err := os.MkdirAll(s.dir, 0700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
		if err := os.WriteFile(s.path(session.Name), data, 0600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return s.updateManifest(session.Name, true)
}

// Load returns the named session. Expired sessions yield ErrExpired.
func (s *Store) Load(name string) (*Session, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	var data []byte
	if s.useFiles {
		raw, err := os.ReadFile(s.path(name))
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		data = raw
	} else {
		raw, err := keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
		data = []byte(raw)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, ErrExpired
	}
	return &session, nil
}

// Delete removes the named session. Deleting a missing file session is not
// an error.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	if s.useFiles {
		if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return s.updateManifest(name, false)
}

// List returns stored session names in lexical order.
func (s *Store) List() ([]string, error) {
	var names []string
	if s.useFiles {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, strings.TrimSuffix(e.Name(), ".json"))
			}
		}
	} else {
		raw, err := keyring.Get(KeyringService, manifestKey)
		if err != nil {
			// no manifest yet
			return []string{}, nil
		}
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
		}
	}
	sort.Strings(names)
	return names, nil
}

// The keyring cannot enumerate entries, so names are tracked separately.
func (s *Store) updateManifest(name string, add bool) error {
	names, _ := s.List()

	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	if add {
		kept = append(kept, name)
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, manifestKey, string(data))
}
