// Package session owns the authentication state of one admin session: who is
// logged in, whether the stored token has been validated, and the last error
// shown to the user.
package session

import (
	"context"
	"maps"
	"net/http"
	"sync"

	"github.com/jrsteele09/materials-admin/apiclient"
	apperrors "github.com/jrsteele09/materials-admin/internal/errors"
	"github.com/jrsteele09/materials-admin/tokenstore"
	"github.com/jrsteele09/materials-admin/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	AuthPath     = "/auth"
	RegisterPath = "/register"
	MePath       = "/auth_me"

	authFailedMessage     = "Authentication failed"
	registerFailedMessage = "Registration failed"
)

// State is a copy of the session's observable fields.
type State struct {
	User            *users.User
	IsAuthenticated bool
	IsChecked       bool
	Loading         bool
	Error           string
}

type authResponse struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// Manager is safe for concurrent use. The token lives in the tokenstore.Store
// given to New; resource stores built for the same session share that store.
type Manager struct {
	api    apiclient.Requester
	tokens tokenstore.Store
	logger zerolog.Logger

	lock  sync.RWMutex
	state State
}

func New(api apiclient.Requester, tokens tokenstore.Store, options ...Option) *Manager {
	m := &Manager{
		api:    api,
		tokens: tokens,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Tokens is the token slot this manager writes.
func (m *Manager) Tokens() tokenstore.Store {
	return m.tokens
}

// State returns a snapshot. The user, attributes included, is a deep copy
// so callers cannot mutate the session through it.
func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		u.Attributes = maps.Clone(u.Attributes)
		s.User = &u
	}
	return s
}

func (m *Manager) IsAuthenticated() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state.IsAuthenticated
}

func (m *Manager) User() *users.User {
	return m.State().User
}

// Login posts credentials to the auth endpoint. On success the token is
// persisted and the session is authenticated and checked.
func (m *Manager) Login(ctx context.Context, credentials users.Credentials) error {
	resp, err := m.authenticate(ctx, AuthPath, credentials, authFailedMessage, apperrors.ErrAuthenticationFailed)
	if err != nil {
		return errors.Wrap(err, "[Manager.Login]")
	}

	m.lock.Lock()
	m.state.User = resp.User
	m.state.IsAuthenticated = true
	m.state.IsChecked = true
	m.lock.Unlock()

	m.logger.Info().Str("email", credentials.Email).Msg("logged in")
	return nil
}

// Register creates an account and logs it in. Unlike Login it leaves the
// checked flag alone.
func (m *Manager) Register(ctx context.Context, registration users.Registration) error {
	resp, err := m.authenticate(ctx, RegisterPath, registration, registerFailedMessage, apperrors.ErrRegistrationFailed)
	if err != nil {
		return errors.Wrap(err, "[Manager.Register]")
	}

	m.lock.Lock()
	m.state.User = resp.User
	m.state.IsAuthenticated = true
	m.lock.Unlock()

	m.logger.Info().Str("email", registration.Email).Msg("registered")
	return nil
}

// authenticate runs the shared login/register flow and stores the token.
// Session fields other than loading and error are left to the caller.
func (m *Manager) authenticate(ctx context.Context, path string, body any, fallback string, incomplete error) (*authResponse, error) {
	m.begin()

	var resp authResponse
	err := m.api.Send(ctx, http.MethodPost, path, "", body, &resp)
	// A session needs both halves; an answer without a usable user would
	// leave the session authenticated with nobody logged in.
	if err == nil && (resp.Token == "" || resp.User == nil || len(resp.User.Attributes) == 0) {
		err = incomplete
	}
	if err == nil {
		err = m.tokens.Set(ctx, resp.Token)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.state.Loading = false
	if err != nil {
		m.state.Error = apiclient.MessageOr(err, fallback)
		m.logger.Warn().Err(err).Str("path", path).Msg("authentication request failed")
		return nil, err
	}
	return &resp, nil
}

// CheckAuth validates the stored token against the server. It never fails:
// any problem is reported as Invalid and leaves the session logged out with
// the token cleared. The session is checked when CheckAuth returns.
func (m *Manager) CheckAuth(ctx context.Context) Validation {
	token, err := m.tokens.Get(ctx)
	if err != nil {
		if !apperrors.Is(err, tokenstore.ErrNoToken) {
			m.logger.Warn().Err(err).Msg("reading session token")
		}
		m.lock.Lock()
		m.state.User = nil
		m.state.IsAuthenticated = false
		m.state.IsChecked = true
		m.lock.Unlock()
		return Invalid(ReasonNoToken, err)
	}

	m.lock.Lock()
	m.state.Loading = true
	m.lock.Unlock()

	var user users.User
	err = m.api.Send(ctx, http.MethodGet, MePath, token, nil, &user)
	if err == nil && len(user.Attributes) == 0 {
		err = apperrors.ErrInvalidSessionResponse
	}

	if err != nil {
		if clearErr := m.tokens.Clear(ctx); clearErr != nil {
			m.logger.Warn().Err(clearErr).Msg("clearing rejected token")
		}
		m.lock.Lock()
		m.state.User = nil
		m.state.IsAuthenticated = false
		m.state.IsChecked = true
		m.state.Loading = false
		m.lock.Unlock()

		m.logger.Info().Err(err).Msg("stored session is no longer valid")
		return Invalid(reasonFor(err), err)
	}

	m.lock.Lock()
	m.state.User = &user
	m.state.IsAuthenticated = true
	m.state.IsChecked = true
	m.state.Loading = false
	m.lock.Unlock()
	return Valid(&user)
}

// EnsureChecked runs CheckAuth once, unless the session is already
// authenticated or checked.
func (m *Manager) EnsureChecked(ctx context.Context) {
	m.lock.RLock()
	skip := m.state.IsAuthenticated || m.state.IsChecked
	m.lock.RUnlock()
	if skip {
		return
	}
	m.CheckAuth(ctx)
}

// Logout forgets the token and the user. No request is made.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.tokens.Clear(ctx)

	m.lock.Lock()
	m.state.User = nil
	m.state.IsAuthenticated = false
	m.lock.Unlock()

	if err != nil {
		return errors.Wrap(err, "[Manager.Logout] clearing token")
	}
	m.logger.Info().Msg("logged out")
	return nil
}

func (m *Manager) begin() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.state.Loading = true
	m.state.Error = ""
}
