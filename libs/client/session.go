package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Keys of the persisted session document.
const (
	TokenKey = "token_bookMyCare"
	UserKey  = "user_bookMyCare"
)

// Session is what a login or registration leaves behind.
type Session struct {
	Token string
	User  User
}

func (s Session) LoggedIn() bool { return s.Token != "" && s.User.ID > 0 }

type sessionFile struct {
	Token string `json:"token_bookMyCare,omitempty"`
	User  *User  `json:"user_bookMyCare,omitempty"`
}

// SessionStore persists the session as a JSON file with an explicit
// Load / Set / Clear lifecycle.
type SessionStore struct {
	path string
	mu   sync.Mutex
	cur  Session
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath honours BOOKMYCARE_SESSION, then ~/.bookmycare/session.json.
func DefaultSessionPath() (string, error) {
	if p := os.Getenv("BOOKMYCARE_SESSION"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bookmycare", "session.json"), nil
}

// Load reads the file; a missing or half-written file yields an empty session.
func (s *SessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cur = Session{}
		return s.cur, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil || f.Token == "" || f.User == nil {
		s.cur = Session{}
		return s.cur, nil
	}
	s.cur = Session{Token: f.Token, User: *f.User}
	return s.cur, nil
}

func (s *SessionStore) Set(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(sessionFile{Token: sess.Token, User: &sess.User}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	s.cur = sess
	return nil
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Session{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current returns the session as of the last Load, Set or Clear.
func (s *SessionStore) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}
