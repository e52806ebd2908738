// Package session holds the client-local record of who is logged in and
// keeps it consistent with the persisted token and the server's answers.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/issuehub/internal/api"
	"github.com/felixgeelhaar/issuehub/internal/errors"
	"github.com/felixgeelhaar/issuehub/internal/events"
	"github.com/felixgeelhaar/issuehub/internal/log"
	"github.com/felixgeelhaar/issuehub/internal/metrics"
)

// Status is the lifecycle state of a session
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Session is a point-in-time view of the store.
// User is set iff Status is StatusAuthenticated, and Token is set whenever
// User is.
type Session struct {
	Token  string
	User   *api.User
	Status Status
}

// Authenticated reports whether a user is signed in
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// IdentityFetcher resolves the user behind the current token
type IdentityFetcher interface {
	Me(ctx context.Context) (*api.User, error)
}

// Store owns the session. It implements api.Credentials so the transport
// reads the token from it and purges it on 401.
type Store struct {
	mu      sync.RWMutex
	session Session

	tokens   TokenStore
	identity IdentityFetcher
	bus      *events.Bus
	logger   *log.Logger
	metrics  *metrics.Metrics

	unsubscribe func()
}

var _ api.Credentials = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithEventBus subscribes the store to EventUnauthenticated and publishes
// login/logout events
func WithEventBus(bus *events.Bus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// WithLogger sets the transition logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics records status transitions
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates a store in the loading state
func NewStore(tokens TokenStore, identity IdentityFetcher, opts ...Option) *Store {
	s := &Store{
		session:  Session{Status: StatusLoading},
		tokens:   tokens,
		identity: identity,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus != nil {
		s.unsubscribe = s.bus.Subscribe(events.EventUnauthenticated, "session", s.onUnauthenticated)
	}
	return s
}

// Close detaches the store from the event bus
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Restore resolves the persisted token, if any, into a session. It does
// not fail: every problem ends in the anonymous state.
func (s *Store) Restore(ctx context.Context) {
	rec, err := s.tokens.Load()
	if err != nil {
		s.log().WarnContext(ctx, "discarding unreadable credentials", "error", err)
		s.purge(ctx, "unreadable credentials")
		return
	}
	if rec.Token == "" {
		s.becomeAnonymous(ctx, "no persisted token")
		return
	}

	s.set(Session{Token: rec.Token, Status: StatusLoading})
	_ = s.resolve(ctx, rec.Token, false)
}

// Login persists token and resolves the user it belongs to. On failure the
// token is purged, the session is anonymous and the fetch error is
// returned.
func (s *Store) Login(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		s.becomeAnonymous(ctx, "empty token")
		return errors.New(errors.ErrCodeTokenEmpty, "server returned an empty token")
	}

	// the remembered email outlives a failed login
	prev, _ := s.tokens.Load()
	if err := s.tokens.Save(Record{Token: token, Email: prev.Email}); err != nil {
		s.becomeAnonymous(ctx, "token not persisted")
		return err
	}

	s.set(Session{Token: token, Status: StatusLoading})
	return s.resolve(ctx, token, true)
}

// Logout forgets the token and the user. Calling it again is harmless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.Clear(); err != nil {
		s.log().WarnContext(ctx, "failed to clear credentials", "error", err)
	}
	s.set(Session{Status: StatusAnonymous})
	s.log().InfoContext(ctx, "logged out")

	s.bus.Publish(ctx, events.NewEvent(events.EventLogout, nil))
}

// resolve fetches the identity for token and records the outcome. The
// network call runs without the lock, so concurrent callers finish in
// completion order and the last one wins.
func (s *Store) resolve(ctx context.Context, token string, login bool) error {
	if s.identity == nil {
		s.purge(ctx, "no identity source")
		return errors.New(errors.ErrCodeIdentityFailed, "no identity source configured")
	}

	user, err := s.identity.Me(ctx)
	if err != nil {
		s.purge(ctx, "identity fetch failed")
		s.log().WithError(err).DebugContext(ctx, "identity fetch failed")
		return err
	}

	s.set(Session{Token: token, User: user, Status: StatusAuthenticated})
	if err := s.tokens.Save(Record{Token: token, Email: user.Email}); err != nil {
		s.log().WarnContext(ctx, "failed to record email with token", "error", err)
	}
	s.log().InfoContext(ctx, "session authenticated", "user_id", user.ID, "email", user.Email)

	if login {
		s.bus.Publish(ctx, events.NewEvent(events.EventLogin, map[string]interface{}{
			events.KeyUserID: user.ID,
			events.KeyEmail:  user.Email,
		}))
	}
	return nil
}

// Token returns the held token. It implements api.Credentials.
func (s *Store) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token, nil
}

// Clear purges the persisted token and drops the session to anonymous.
// It implements api.Credentials and runs when the server answers 401.
func (s *Store) Clear() error {
	s.set(Session{Status: StatusAnonymous})
	return s.tokens.Clear()
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.session
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

// Status returns the current status
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Status
}

// User returns the signed-in user, or nil
func (s *Store) User() *api.User {
	return s.Snapshot().User
}

// RequireUser returns the signed-in user or a not-logged-in error
func (s *Store) RequireUser() (*api.User, error) {
	if u := s.User(); u != nil {
		return u, nil
	}
	return nil, errors.NewNotLoggedInError()
}

func (s *Store) onUnauthenticated(ctx context.Context, e *events.Event) {
	s.becomeAnonymous(ctx, "server rejected token")
}

func (s *Store) purge(ctx context.Context, reason string) {
	if err := s.tokens.Clear(); err != nil {
		s.log().WarnContext(ctx, "failed to clear credentials", "error", err)
	}
	s.becomeAnonymous(ctx, reason)
}

func (s *Store) becomeAnonymous(ctx context.Context, reason string) {
	s.set(Session{Status: StatusAnonymous})
	s.log().DebugContext(ctx, "session anonymous", "reason", reason)
}

func (s *Store) set(next Session) {
	s.mu.Lock()
	changed := s.session.Status != next.Status
	s.session = next
	s.mu.Unlock()

	if changed {
		s.metrics.ObserveSession(string(next.Status))
	}
}

func (s *Store) log() *log.Logger {
	return log.OrDefault(s.logger)
}
