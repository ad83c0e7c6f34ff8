package auth

import (
	"crypto/sha256"
	"errors"
	"time"

	"github.com/gorilla/securecookie"
)

var (
	ErrSessionMalformed = errors.New("auth: session token malformed")
	ErrSessionSignature = errors.New("auth: session signature mismatch")
	ErrSessionExpired   = errors.New("auth: session expired")
)

const (
	sessionSalt  = "session."
	sessionCodec = "session"
)

// Session is the signed cookie payload.
type Session struct {
	Username string `json:"username"`
	IssuedAt int64  `json:"issued_at"`
}

// Signer issues and verifies HMAC-authenticated session tokens. The hash key
// is derived from the configured secret. Expiry is judged on IssuedAt against
// the signer clock rather than the codec's own timestamp.
type Signer struct {
	codec  *securecookie.SecureCookie
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner builds a signer. maxAge <= 0 disables expiry checks.
func NewSigner(secret string, maxAge time.Duration) *Signer {
	hashKey := sha256.Sum256([]byte(sessionSalt + secret))
	codec := securecookie.New(hashKey[:], nil).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(0)
	return &Signer{codec: codec, maxAge: maxAge, now: time.Now}
}

// Sign encodes a session for username issued now.
func (s *Signer) Sign(username string) (string, error) {
	return s.codec.Encode(sessionCodec, Session{Username: username, IssuedAt: s.now().Unix()})
}

// Verify checks the signature and age of token and returns its session.
func (s *Signer) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionMalformed
	}
	var session Session
	if err := s.codec.Decode(sessionCodec, token, &session); err != nil {
		if errors.Is(err, securecookie.ErrMacInvalid) {
			return Session{}, ErrSessionSignature
		}
		return Session{}, ErrSessionMalformed
	}
	if session.Username == "" {
		return Session{}, ErrSessionMalformed
	}
	if s.maxAge > 0 && s.now().Sub(time.Unix(session.IssuedAt, 0)) > s.maxAge {
		return Session{}, ErrSessionExpired
	}
	return session, nil
}
