package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// defaultSessionTTL is how long a signed session stays valid.
const defaultSessionTTL = 30 * 24 * time.Hour

// SessionSigner mints and verifies the session cookie value. The format is
// base64(email)|expiry-unix|hex-free base64 HMAC; the cookie carries no
// server-side state, so sessions survive restarts without a session table.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner creates a signer over the instance secret.
func NewSessionSigner(secret string) *SessionSigner {
	return &SessionSigner{secret: []byte(secret), ttl: defaultSessionTTL, now: time.Now}
}

// Sign mints a session value for the actor.
func (s *SessionSigner) Sign(email string) string {
	expiry := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s|%d", base64.RawURLEncoding.EncodeToString([]byte(email)), expiry)
	return payload + "|" + s.mac(payload)
}

// Verify checks the signature and expiry and returns the actor's email.
func (s *SessionSigner) Verify(value string) (string, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 3 {
		return "", errors.New("malformed session")
	}
	payload := parts[0] + "|" + parts[1]
	if !hmac.Equal([]byte(s.mac(payload)), []byte(parts[2])) {
		return "", errors.New("invalid session signature")
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", errors.New("malformed session expiry")
	}
	if s.now().Unix() > expiry {
		return "", errors.New("session expired")
	}

	email, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errors.New("malformed session subject")
	}
	return string(email), nil
}

func (s *SessionSigner) mac(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
