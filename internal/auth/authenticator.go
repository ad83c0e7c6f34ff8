package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTooManyAttempts    = errors.New("auth: too many login attempts")
)

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the authenticator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source for signing and throttling.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.signer.now = now
			a.limiter.now = now
		}
	}
}

// Authenticator checks the admin credentials and manages the session cookie.
type Authenticator struct {
	cfg     runtimeconfig.AuthConfig
	signer  *Signer
	limiter *LoginLimiter
	logger  interfaces.Logger
}

// New builds an authenticator. Without an admin account configured every
// login fails and no session is ever valid.
func New(cfg runtimeconfig.AuthConfig, opts ...Option) *Authenticator {
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	a := &Authenticator{
		cfg:     cfg,
		signer:  NewSigner(cfg.SecretKey, cfg.SessionMaxAge),
		limiter: NewLoginLimiter(cfg.LoginRate, cfg.LoginBurst),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Authenticator) enabled() bool {
	return a.cfg.AdminUsername != "" && a.cfg.AdminPasswordHash != "" && a.cfg.SecretKey != ""
}

// Login checks credentials for client and returns a signed session token.
func (a *Authenticator) Login(ctx context.Context, client, username, password string) (string, error) {
	logger := a.logger.WithContext(ctx)
	if !a.limiter.Allow(client) {
		logger.Warn("auth.login.throttled", "client", client)
		return "", ErrTooManyAttempts
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.AdminUsername)) == 1
	passOK := CheckPassword(a.cfg.AdminPasswordHash, password)
	if !a.enabled() || !userOK || !passOK {
		logger.Warn("auth.login.failed", "client", client, "username", username)
		return "", ErrInvalidCredentials
	}
	token, err := a.signer.Sign(a.cfg.AdminUsername)
	if err != nil {
		return "", err
	}
	logger.Info("auth.login.succeeded", "username", username)
	return token, nil
}

// Authenticate resolves the auth context for a request from its cookie.
func (a *Authenticator) Authenticate(r *http.Request) Context {
	ac := Context{RequestID: logging.RequestID(r.Context())}
	if !a.enabled() {
		return ac
	}
	cookie, err := r.Cookie(a.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return ac
	}
	session, err := a.signer.Verify(cookie.Value)
	if err != nil {
		a.logger.WithContext(r.Context()).Debug("auth.session.rejected", "error", err)
		return ac
	}
	if session.Username != a.cfg.AdminUsername {
		return ac
	}
	ac.Username = session.Username
	ac.Authenticated = true
	ac.IssuedAt = time.Unix(session.IssuedAt, 0).UTC()
	return ac
}

// Middleware attaches the request's auth Context for downstream handlers.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := a.Authenticate(r)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ac)))
	})
}

// SessionCookie wraps token in the configured session cookie.
func (a *Authenticator) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.cfg.SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func (a *Authenticator) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
