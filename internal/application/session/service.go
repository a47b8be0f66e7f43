// Package session owns the authentication token and the resolved user
// identity. Exactly one live session exists process-wide, with explicit
// lifecycle: unauthenticated, (login) authenticated, (logout or failed
// identity check) unauthenticated. The token persists across runs;
// identity is re-derived from the token on startup.
package session

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/cookchat/cookchat/internal/ports/outbound"
	"github.com/cookchat/cookchat/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// State is the session lifecycle state
type State int

const (
	StateUnauthenticated State = iota
	// StateLoading is the transient state while a persisted token is
	// being checked against the backend on startup
	StateLoading
	StateAuthenticated
)

// FallbackUsername is shown when the backend greeting does not carry a
// recognizable name
const FallbackUsername = "User"

// greetingPattern extracts the display name from the backend's free-text
// greeting ("Hello, <name> 👋")
var greetingPattern = regexp.MustCompile(`Hello, (.*?) 👋`)

// TokenPersistence abstracts the persisted-token storage
type TokenPersistence interface {
	Load() (string, error)
	Save(token string) error
	Clear()
}

// Store manages the live session
type Store struct {
	gateway   outbound.Gateway
	persisted TokenPersistence
	logger    *zap.Logger

	mu       sync.RWMutex
	state    State
	token    string
	username string

	// onLogout hooks run synchronously inside Logout; the conversation
	// log and the resolver cache register their resets here
	onLogout []func()
}

// NewStore creates a session store
func NewStore(gateway outbound.Gateway, persisted TokenPersistence, logger *zap.Logger) *Store {
	return &Store{
		gateway:   gateway,
		persisted: persisted,
		logger:    logger.Named("session"),
	}
}

// OnLogout registers a hook to run during every logout or identity-check
// downgrade. Hooks must not fail; logout is total.
func (s *Store) OnLogout(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, hook)
}

// Initialize restores the session from the persisted token, if any.
// A failed identity check discards the token; this is the only path that
// downgrades authenticated to unauthenticated without user action.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.persisted.Load()
	if err != nil {
		s.logger.Warn("Failed to load persisted token", zap.Error(err))
		token = ""
	}
	if token == "" {
		s.setUnauthenticated()
		return nil
	}

	s.mu.Lock()
	s.state = StateLoading
	s.token = token
	s.mu.Unlock()

	// An expired JWT cannot pass the identity check; skip the round trip.
	// Opaque tokens fall through to the network check.
	if tokenExpired(token) {
		s.logger.Info("Persisted token expired, discarding")
		s.discardSession()
		return errors.NewIdentityCheckFailedError(nil)
	}

	greeting, err := s.gateway.FetchIdentity(ctx, token)
	if err != nil {
		s.logger.Info("Identity check failed, discarding token", zap.Error(err))
		s.discardSession()
		return errors.NewIdentityCheckFailedError(err)
	}

	username := deriveUsername(greeting, FallbackUsername)
	s.mu.Lock()
	s.state = StateAuthenticated
	s.username = username
	s.mu.Unlock()

	s.logger.Info("Session restored", zap.String("username", username))
	return nil
}

// Login authenticates with the backend. Any existing token is cleared
// first so there is no ambiguous partial state. On failure the session
// stays unauthenticated and the returned error carries a user-facing
// reason.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.token = ""
	s.username = ""
	s.state = StateUnauthenticated
	s.mu.Unlock()
	s.persisted.Clear()

	token, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		return errors.NewAuthFailedError(errors.ReasonOf(err), err)
	}

	if err := s.persisted.Save(token); err != nil {
		// The session still works for this run; it just won't survive
		// a restart.
		s.logger.Warn("Failed to persist token", zap.Error(err))
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	// Same identity-fetch path as Initialize; on login the entered
	// username is a better fallback than the generic placeholder.
	greeting, err := s.gateway.FetchIdentity(ctx, token)
	if err != nil {
		s.logger.Warn("Identity fetch failed after login", zap.Error(err))
		s.discardSession()
		return errors.NewAuthFailedError(errors.ReasonOf(err), err)
	}

	derived := deriveUsername(greeting, username)
	s.mu.Lock()
	s.state = StateAuthenticated
	s.username = derived
	s.mu.Unlock()

	s.logger.Info("Logged in", zap.String("username", derived))
	return nil
}

// Register creates an account. Stateless pass-through: it does not affect
// session state. Returns the backend's confirmation message.
func (s *Store) Register(ctx context.Context, username, password string) (string, error) {
	msg, err := s.gateway.Register(ctx, username, password)
	if err != nil {
		return "", errors.NewAuthFailedError(errors.ReasonOf(err), err)
	}
	return msg, nil
}

// Logout clears the token and identity and runs the registered teardown
// hooks. Synchronous and total; it cannot fail.
func (s *Store) Logout() {
	s.discardSession()
	s.logger.Info("Logged out")
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is logged in
func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// Token returns the current auth token, or "" when unauthenticated
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Username returns the resolved display name, or "" when unauthenticated
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	s.state = StateUnauthenticated
	s.token = ""
	s.username = ""
	s.mu.Unlock()
}

// discardSession clears all session state and runs the teardown hooks
func (s *Store) discardSession() {
	s.persisted.Clear()

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.token = ""
	s.username = ""
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// deriveUsername parses the backend greeting for a display name, falling
// back rather than failing the whole flow when the pattern is absent
func deriveUsername(greeting, fallback string) string {
	if m := greetingPattern.FindStringSubmatch(greeting); m != nil && m[1] != "" {
		return m[1]
	}
	return fallback
}

// tokenExpired reports whether token is a JWT with an exp claim in the
// past. Verification stays server-side; this is only an unverified peek.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
