package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/mediapost/internal/adapter/metrics"
	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/observer"
	"golang.org/x/sync/singleflight"
)

const (
	refreshKey = "refresh"

	defaultLoginPath      = "/login"
	defaultRefreshTimeout = 10 * time.Second
)

// Session is the current credential. Token, ExpiresAt and Identity are either
// all set or all zero.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  *domain.Identity
}

// Authenticated reports whether a token is present, expired or not.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Valid reports whether the token is present and not yet expired at now.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && s.ExpiresAt.After(now)
}

// Authorization is the outcome of EnsureAuthorization. An empty HeaderValue
// means the caller proceeds anonymously.
type Authorization struct {
	HeaderValue string
}

func (a Authorization) Anonymous() bool {
	return a.HeaderValue == ""
}

type Option func(*Coordinator)

// WithLoginPath sets the location users are sent to when a session is required.
func WithLoginPath(path string) Option {
	return func(c *Coordinator) { c.loginPath = path }
}

// WithRefreshTimeout bounds a single refresh call.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.refreshTimeout = d }
}

// Coordinator owns the session. Reads never observe a partially replaced session.
type Coordinator struct {
	auth    domain.Authenticator
	nav     domain.Navigator
	clock   clockwork.Clock
	metrics *metrics.SessionMetrics

	loginPath      string
	refreshTimeout time.Duration

	mu        sync.RWMutex
	session   Session
	group     singleflight.Group
	listeners observer.Listeners[Session]
}

func NewCoordinator(auth domain.Authenticator, nav domain.Navigator, clock clockwork.Clock, m *metrics.SessionMetrics, opts ...Option) *Coordinator {
	c := &Coordinator{
		auth:           auth,
		nav:            nav,
		clock:          clock,
		metrics:        m,
		loginPath:      defaultLoginPath,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleLoginResult installs result as the new session, or clears the session
// when result is nil. Callers arriving afterwards never join a refresh that
// started before this call.
func (c *Coordinator) HandleLoginResult(result *domain.LoginResult) {
	c.group.Forget(refreshKey)
	c.install(result)
}

// EnsureAuthorization returns the header value for a privileged call.
//
// With require set, a missing session redirects to the login page and returns
// domain.ErrAuthorizationRequired, and a failed refresh is returned (redirecting
// first when the backend answered unauthorized). Without require, both cases
// resolve to an anonymous Authorization.
func (c *Coordinator) EnsureAuthorization(ctx context.Context, require bool) (Authorization, error) {
	if s := c.Session(); s.Valid(c.clock.Now()) {
		c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationCached).Inc()
		return bearer(s), nil
	}

	s, err := c.refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationFailed).Inc()
			return Authorization{}, ctx.Err()
		}
		if !require {
			slog.Debug("Proceeding anonymously after refresh failure", "error", err)
			c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationSkipped).Inc()
			return Authorization{}, nil
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			c.redirectToLogin()
		}
		c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationFailed).Inc()
		return Authorization{}, err
	}

	if !s.Authenticated() {
		if !require {
			c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationSkipped).Inc()
			return Authorization{}, nil
		}
		c.redirectToLogin()
		c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationFailed).Inc()
		return Authorization{}, domain.ErrAuthorizationRequired
	}

	c.metrics.Authorizations.WithLabelValues(metrics.AuthorizationRefreshed).Inc()
	return bearer(s), nil
}

// Login submits credentials and installs the outcome. A failed login leaves
// the client anonymous.
func (c *Coordinator) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	result, err := c.auth.Login(ctx, creds)
	if err != nil {
		c.HandleLoginResult(nil)
		return nil, fmt.Errorf("login: %w", err)
	}
	if result == nil || result.Token == "" {
		c.HandleLoginResult(nil)
		return nil, fmt.Errorf("login: empty result: %w", domain.ErrUnauthorized)
	}

	c.HandleLoginResult(result)
	slog.Info("Logged in", "user_id", result.Identity.ID, "username", result.Identity.Username)
	return c.Identity(), nil
}

// Logout ends the backend session and clears the local one. The local session
// is cleared even when the backend call fails.
func (c *Coordinator) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	c.HandleLoginResult(nil)
	if err != nil {
		slog.Warn("Backend logout failed", "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Coordinator) IsAuthenticated() bool {
	return c.Session().Authenticated()
}

// Identity returns a copy of the current identity, or nil when anonymous.
func (c *Coordinator) Identity() *domain.Identity {
	s := c.Session()
	if s.Identity == nil {
		return nil
	}
	identity := *s.Identity
	return &identity
}

// Session returns a snapshot of the current session. The identity is a copy.
func (c *Coordinator) Session() Session {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()

	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	return s
}

// Subscribe registers fn to be called with every newly installed session.
func (c *Coordinator) Subscribe(fn func(Session)) func() {
	return c.listeners.Subscribe(fn)
}

// refresh joins the in-flight refresh or starts one. The refresh itself runs
// detached from ctx; cancelling ctx only stops this caller from waiting.
func (c *Coordinator) refresh(ctx context.Context) (Session, error) {
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		// a flight that finished just before this one started may have installed a session
		if s := c.Session(); s.Valid(c.clock.Now()) {
			return s, nil
		}
		return c.runRefresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.CoalescedWaits.Inc()
		}
		if res.Err != nil {
			return Session{}, res.Err
		}
		return res.Val.(Session), nil
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}
}

func (c *Coordinator) runRefresh(ctx context.Context) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	start := c.clock.Now()
	result, err := c.auth.Refresh(ctx)
	c.metrics.RefreshDuration.Observe(c.clock.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.metrics.Refreshes.WithLabelValues(metrics.RefreshUnauthorized).Inc()
		slog.Info("Session refresh rejected", "error", err)
		c.install(nil)
		return Session{}, err
	case err != nil:
		c.metrics.Refreshes.WithLabelValues(metrics.RefreshError).Inc()
		slog.Warn("Session refresh failed", "error", err)
		c.install(nil)
		return Session{}, fmt.Errorf("refresh session: %w", err)
	case result == nil:
		c.metrics.Refreshes.WithLabelValues(metrics.RefreshNoSession).Inc()
	default:
		c.metrics.Refreshes.WithLabelValues(metrics.RefreshSuccess).Inc()
	}

	return c.install(result), nil
}

func (c *Coordinator) install(result *domain.LoginResult) Session {
	var next Session
	if result != nil && result.Token != "" {
		identity := result.Identity
		next = Session{
			Token:     result.Token,
			ExpiresAt: expiresAt(c.clock.Now(), result.ExpirationSeconds),
			Identity:  &identity,
		}
	}

	c.mu.Lock()
	c.session = next
	c.mu.Unlock()

	if next.Authenticated() {
		c.metrics.Authenticated.Set(1)
	} else {
		c.metrics.Authenticated.Set(0)
	}
	c.listeners.Notify(next)
	return next
}

func (c *Coordinator) redirectToLogin() {
	from := c.nav.CurrentLocation()
	c.metrics.LoginRedirects.Inc()
	slog.Info("Redirecting to login", "from", from, "login_path", c.loginPath)
	c.nav.NavigateTo(c.loginPath, domain.NavigateOptions{From: from, Replace: true})
}

// expiresAt places expiry at two thirds of the advertised lifetime, leaving
// headroom for clock skew and in-flight requests.
func expiresAt(now time.Time, expirationSeconds int64) time.Time {
	return now.Add(time.Duration(expirationSeconds*2000/3) * time.Millisecond)
}

func bearer(s Session) Authorization {
	return Authorization{HeaderValue: "Bearer " + s.Token}
}
