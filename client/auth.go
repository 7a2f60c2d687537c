package client

import (
	"context"
)

// AuthService drives login/register and feeds the session store.
type AuthService struct {
	client  *Client
	session *Session
}

func NewAuthService(c *Client, s *Session) *AuthService {
	return &AuthService{client: c, session: s}
}

// Register creates an account. Some deployments return a token right away,
// some require a follow-up login; the session is only persisted with a
// token when one is present.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (map[string]any, error) {
	var payload map[string]any
	err := s.client.SendJSON(ctx, "POST", "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		return nil, err
	}

	if ExtractToken(payload) != "" {
		return s.session.Set(payload, true)
	}

	s.session.Clear()
	return NormalizeUser(ExtractUserPayload(payload)), nil
}

// Login authenticates and persists the session. A response without a token
// is an error.
func (s *AuthService) Login(ctx context.Context, email, password string) (map[string]any, error) {
	var payload map[string]any
	err := s.client.SendJSON(ctx, "POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		return nil, err
	}
	return s.session.Set(payload, true)
}

// Logout clears the session. Purely local: there is no server-side session
// to tear down with bearer tokens.
func (s *AuthService) Logout() {
	s.session.Clear()
}
