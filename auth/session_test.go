package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessionSigner("test-secret")

	value := s.Sign("user@example.com")
	email, err := s.Verify(value)

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestSessionVerify_RejectsTampering(t *testing.T) {
	s := NewSessionSigner("test-secret")
	value := s.Sign("user@example.com")

	parts := strings.Split(value, "|")
	forged := strings.Join([]string{parts[0], "9999999999", parts[2]}, "|")

	_, err := s.Verify(forged)
	assert.Error(t, err)
}

func TestSessionVerify_RejectsWrongSecret(t *testing.T) {
	minted := NewSessionSigner("secret-a").Sign("user@example.com")

	_, err := NewSessionSigner("secret-b").Verify(minted)
	assert.Error(t, err)
}

func TestSessionVerify_RejectsExpired(t *testing.T) {
	s := NewSessionSigner("test-secret")
	s.now = func() time.Time { return time.Now().Add(-60 * 24 * time.Hour) }
	value := s.Sign("user@example.com")

	s.now = time.Now
	_, err := s.Verify(value)
	assert.ErrorContains(t, err, "expired")
}

func TestSessionVerify_RejectsGarbage(t *testing.T) {
	s := NewSessionSigner("test-secret")
	for _, v := range []string{"", "a|b", "a|b|c|d", "!!|123|sig"} {
		_, err := s.Verify(v)
		assert.Error(t, err, "value %q", v)
	}
}
