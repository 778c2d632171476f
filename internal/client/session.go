// Package client is the device side of the authentication flow: it keeps a
// single session alive across process restarts by persisting the bearer
// token locally and re-resolving the user at startup.
package client

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when a login or registration attempt is already in
// flight; the flag exists to block duplicate submission, not to queue.
var ErrBusy = errors.New("another attempt is in progress")

// Session maintains at most one authenticated user. Observable states are
// exactly logged-out and logged-in; a rejected token collapses to logged-out.
type Session struct {
	api   *API
	store *Store

	mu    sync.Mutex
	busy  bool
	token string
	user  *User
}

// NewSession binds the API client to the persistent token store.
func NewSession(api *API, store *Store) *Session {
	return &Session{api: api, store: store}
}

// Bootstrap reads the persisted token and tries to resolve the current user.
// A token the server rejects is treated as "logged out": the slot is cleared
// silently and no error is surfaced. Transient failures (network, server
// fault) are returned and leave the slot untouched for the next start.
func (s *Session) Bootstrap(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		if IsUnauthorized(err) {
			_ = s.store.Clear()
			s.reset()
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Login authenticates and persists the token only on success.
func (s *Session) Login(ctx context.Context, usernameOrEmail, password string) (*User, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	token, user, err := s.api.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Register creates an account. It does not log in; the caller follows up
// with Login, mirroring the registration flow of the app.
func (s *Session) Register(ctx context.Context, params RegisterParams) (*User, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	return s.api.Register(ctx, params)
}

// Logout clears the persisted token and the in-memory state unconditionally.
// Logging out while already logged out is a no-op.
func (s *Session) Logout() {
	_ = s.store.Clear()
	s.reset()
}

// UpdateProfile applies a partial update using the current token. When the
// server rejects the token the session collapses to logged-out before the
// error is returned.
func (s *Session) UpdateProfile(ctx context.Context, patch ProfilePatch) (*User, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil, &APIError{Status: 401, Message: "not logged in"}
	}

	user, err := s.api.UpdateProfile(ctx, token, patch)
	if err != nil {
		if IsUnauthorized(err) {
			s.Logout()
		}
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Current returns the logged-in user, or false when logged out.
func (s *Session) Current() (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.user != nil
}

// Token returns the active bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}
