package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *Issuer {
	t.Helper()
	iss, err := NewIssuer("garrison-test", "unit-test-secret", ttl)
	require.NoError(t, err)
	return iss
}

func TestNewIssuer_RejectsEmptySecret(t *testing.T) {
	_, err := NewIssuer("x", "", time.Hour)
	require.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)

	tok, exp, err := iss.Issue("user-123")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	sub, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestVerify_Expired(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)
	iss.ttl = -time.Minute // forzar un token ya vencido

	tok, _, err := iss.Issue("user-123")
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_SingleBitMutationFails(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)

	tok, _, err := iss.Issue("user-123")
	require.NoError(t, err)

	// Mutar un bit en cada posición: nunca debe degradar a éxito anónimo.
	for pos := 0; pos < len(tok); pos += 7 {
		b := []byte(tok)
		b[pos] ^= 0x01
		_, err := iss.Verify(string(b))
		assert.Error(t, err, "bit flip at %d accepted", pos)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a := newTestIssuer(t, time.Hour)
	b, err := NewIssuer("garrison-test", "other-secret", time.Hour)
	require.NoError(t, err)

	tok, _, err := a.Issue("user-123")
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongIssuer(t *testing.T) {
	a := newTestIssuer(t, time.Hour)
	b, err := NewIssuer("someone-else", "unit-test-secret", time.Hour)
	require.NoError(t, err)

	tok, _, err := a.Issue("user-123")
	require.NoError(t, err)

	_, err = b.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)
	for _, in := range []string{"", "abc", "a.b.c", "ey.ey.ey"} {
		_, err := iss.Verify(in)
		assert.ErrorIs(t, err, ErrTokenInvalid, "input %q", in)
	}
}
