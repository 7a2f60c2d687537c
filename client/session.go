package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoToken is returned when an auth response carries no usable token.
var ErrNoToken = errors.New("authentication token is missing from the response")

// Session holds the authenticated user and bearer token, persisted to a
// JSON file so it survives restarts. Lifecycle is explicit: Init hydrates
// from disk, Set stores a login/register response, Clear wipes it. All
// reads go through the accessors.
type Session struct {
	mu    sync.Mutex
	path  string
	token string
	user  map[string]any
}

type sessionFile struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

func NewSession(path string) *Session {
	return &Session{path: path}
}

// Init hydrates the session from disk. A missing or unreadable file is not
// an error: it simply leaves the session unauthenticated, the way a fresh
// browser profile would.
func (s *Session) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var stored sessionFile
	if err := json.Unmarshal(data, &stored); err != nil {
		os.Remove(s.path)
		return
	}

	s.token = stored.Token
	if stored.User != nil {
		s.user = NormalizeUser(stored.User)
	}
}

// Set stores the outcome of an auth response: extracts the token, unwraps
// and normalizes the user, persists both. requireToken matches the login
// path; registration may complete without one.
func (s *Session) Set(payload map[string]any, requireToken bool) (map[string]any, error) {
	token := ExtractToken(payload)
	if requireToken && token == "" {
		return nil, ErrNoToken
	}

	user := NormalizeUser(ExtractUserPayload(payload))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user
	s.persist()
	return user, nil
}

// Clear wipes the session, on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	os.Remove(s.path)
}

func (s *Session) persist() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(sessionFile{Token: s.token, User: s.user})
	if err != nil {
		return
	}
	os.MkdirAll(filepath.Dir(s.path), 0o755)
	os.WriteFile(s.path, data, 0o600)
}

// Token returns the current bearer token, or "".
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser returns the normalized user payload, or nil when logged out.
func (s *Session) CurrentUser() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := make(map[string]any, len(s.user))
	for k, v := range s.user {
		user[k] = v
	}
	return user
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports the canonical admin flag of the current user.
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DeriveAdminFlag(s.user)
}
