package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
)

func testConfig(t *testing.T) runtimeconfig.AuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return runtimeconfig.AuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		SecretKey:         "0123456789abcdef0123",
		CookieName:        "session",
		SessionMaxAge:     7 * 24 * time.Hour,
		LoginRate:         0.2,
		LoginBurst:        3,
	}
}

func TestRequire(t *testing.T) {
	if err := Require(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	ctx := WithContext(context.Background(), Context{Username: "admin", Authenticated: true})
	if err := Require(ctx); err != nil {
		t.Fatalf("expected authenticated context, got %v", err)
	}
}

func TestSigner_RoundTripAndTamper(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	signer := NewSigner("secret-key-long-enough", time.Hour)
	signer.now = func() time.Time { return now }

	token, err := signer.Sign("admin")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	session, err := signer.Verify(token)
	if err != nil || session.Username != "admin" || session.IssuedAt != now.Unix() {
		t.Fatalf("Verify() = %+v, %v", session, err)
	}

	if _, err := signer.Verify(tamperSessionToken(t, token)); !errors.Is(err, ErrSessionSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if _, err := NewSigner("other-secret", time.Hour).Verify(token); !errors.Is(err, ErrSessionSignature) {
		t.Fatalf("expected signature error for other secret, got %v", err)
	}
	if _, err := signer.Verify("garbage"); !errors.Is(err, ErrSessionMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := signer.Verify(token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

// tamperSessionToken rewrites the issued-at field of an encoded session while
// leaving the MAC intact.
func tamperSessionToken(t *testing.T, token string) string {
	t.Helper()
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	parts := bytes.SplitN(raw, []byte("|"), 3)
	if len(parts) != 3 {
		t.Fatalf("unexpected token layout %q", raw)
	}
	parts[0] = append([]byte("1"), parts[0]...)
	return base64.URLEncoding.EncodeToString(bytes.Join(parts, []byte("|")))
}

func TestAuthenticator_LoginAndMiddleware(t *testing.T) {
	a := New(testConfig(t))
	ctx := context.Background()

	if _, err := a.Login(ctx, "10.0.0.1", "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	token, err := a.Login(ctx, "10.0.0.1", "admin", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	cookie := a.SessionCookie(token)
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.MaxAge != 7*24*3600 {
		t.Fatalf("unexpected cookie %+v", cookie)
	}

	var seen Context
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !seen.Authenticated || seen.Username != "admin" {
		t.Fatalf("expected authenticated context, got %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token + "tampered"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen.Authenticated {
		t.Fatalf("tampered cookie must not authenticate")
	}
}

func TestAuthenticator_DisabledWithoutAdmin(t *testing.T) {
	a := New(runtimeconfig.AuthConfig{SecretKey: "0123456789abcdef"})
	if _, err := a.Login(context.Background(), "1.1.1.1", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticator_LoginThrottled(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	a := New(testConfig(t), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	for i := range 3 {
		if _, err := a.Login(ctx, "10.0.0.2", "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := a.Login(ctx, "10.0.0.2", "admin", "s3cret"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if _, err := a.Login(ctx, "10.0.0.3", "admin", "s3cret"); err != nil {
		t.Fatalf("other clients must not be throttled: %v", err)
	}

	now = now.Add(5 * time.Second)
	if _, err := a.Login(ctx, "10.0.0.2", "admin", "s3cret"); err != nil {
		t.Fatalf("expected a token after refill, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "pw") || CheckPassword(hash, "nope") {
		t.Fatalf("hash does not verify as expected")
	}
	if _, err := HashPassword(""); !errors.Is(err, ErrPasswordEmpty) {
		t.Fatalf("expected ErrPasswordEmpty, got %v", err)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	if got := ClientIP(req); got != "192.0.2.7" {
		t.Fatalf("ClientIP() = %q", got)
	}
}
