package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Tomlord1122/task-manager/internal/auth"
)

type State int

const (
	StateAnonymous State = iota
	StateLoading
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session caches the caller's token and identity. A session is only
// authenticated while its token is unexpired and the server has accepted it.
type Session struct {
	api   *Client
	store TokenStore
	now   func() time.Time

	mu        sync.Mutex
	state     State
	token     string
	expiresAt time.Time
	user      *User
	// gen changes on every transition so a slow Load cannot overwrite a
	// newer Login or Logout.
	gen uint64
}

func NewSession(api *Client, store TokenStore) *Session {
	return &Session{api: api, store: store, now: time.Now}
}

// Load restores the stored token. Expired or undecodable tokens are dropped
// without contacting the server; otherwise the token is confirmed against
// /auth/user and dropped if that fails for any reason.
func (s *Session) Load(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		s.reset()
		return err
	}
	if token == "" {
		s.reset()
		return nil
	}

	exp, err := auth.ExpiresAt(token)
	if err != nil || !s.now().Before(exp) {
		s.reset()
		return s.store.Clear()
	}

	return s.establish(ctx, token, exp)
}

func (s *Session) Register(ctx context.Context, email, secret string) error {
	resp, err := s.api.Register(ctx, email, secret)
	if err != nil {
		return err
	}
	return s.adopt(ctx, resp.Token)
}

func (s *Session) Login(ctx context.Context, email, secret string) error {
	resp, err := s.api.Login(ctx, email, secret)
	if err != nil {
		return err
	}
	return s.adopt(ctx, resp.Token)
}

// Logout forgets the token locally. Tokens are stateless, so the server is
// not told.
func (s *Session) Logout() error {
	s.reset()
	return s.store.Clear()
}

// Token returns the current token, or "" if the session is not authenticated.
// An expired token logs the session out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return ""
	}
	if !s.now().Before(s.expiresAt) {
		s.clearLocked()
		_ = s.store.Clear()
		return ""
	}
	return s.token
}

func (s *Session) State() State {
	s.Token()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the cached identity, or nil when not authenticated.
func (s *Session) User() *User {
	if s.Token() == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// API returns a client authenticated as the session's user.
func (s *Session) API() (*Client, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return s.api.WithToken(token), nil
}

func (s *Session) adopt(ctx context.Context, token string) error {
	exp, err := auth.ExpiresAt(token)
	if err != nil {
		s.reset()
		return fmt.Errorf("server issued an unreadable token: %w", err)
	}
	if err := s.store.Save(token); err != nil {
		s.reset()
		return err
	}
	return s.establish(ctx, token, exp)
}

func (s *Session) establish(ctx context.Context, token string, exp time.Time) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	user, err := s.api.WithToken(token).CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return errors.New("session changed while loading")
	}
	if err != nil {
		s.clearLocked()
		_ = s.store.Clear()
		return fmt.Errorf("load session: %w", err)
	}
	s.state = StateAuthenticated
	s.token = token
	s.expiresAt = exp
	s.user = user
	return nil
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.gen++
	s.state = StateAnonymous
	s.token = ""
	s.expiresAt = time.Time{}
	s.user = nil
}
