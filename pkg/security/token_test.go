package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	m := NewTokenMaker("test-secret", time.Hour)

	tok, err := m.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, issuedAt, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.WithinDuration(t, time.Now(), issuedAt, 5*time.Second)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenMaker("test-secret", -time.Hour)

	tok, err := m.Issue("user-123")
	require.NoError(t, err)

	_, _, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTampered(t *testing.T) {
	m := NewTokenMaker("test-secret", time.Hour)

	tok, err := m.Issue("user-123")
	require.NoError(t, err)

	// Flip a character in the payload segment
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)

	_, _, err = m.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	m := NewTokenMaker("test-secret", time.Hour)
	other := NewTokenMaker("other-secret", time.Hour)

	tok, err := m.Issue("user-123")
	require.NoError(t, err)

	_, _, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenMaker("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestResetTokenHashing(t *testing.T) {
	raw, hashed, err := NewResetToken()
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Stored form never equals the mailed form
	assert.NotEqual(t, raw, hashed)
	assert.Equal(t, hashed, HashResetToken(raw))
	assert.Len(t, hashed, 64)

	_, hashed2, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, hashed, hashed2)
}
