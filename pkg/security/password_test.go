package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	a := New()

	hash, err := a.GenerateFromPassword("hunter22!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "hunter22!")

	ok, err := a.VerifyPasswd("hunter22!", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMismatch(t *testing.T) {
	a := New()

	hash, err := a.GenerateFromPassword("hunter22!")
	require.NoError(t, err)

	ok, err := a.VerifyPasswd("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyUnreadableHash(t *testing.T) {
	a := New()

	_, err := a.VerifyPasswd("whatever", "not-a-phc-string")
	assert.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	a := New()

	h1, err := a.GenerateFromPassword("same-password")
	require.NoError(t, err)
	h2, err := a.GenerateFromPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestWasChangedAfter(t *testing.T) {
	now := time.Now()
	changed := now

	assert.False(t, WasChangedAfter(nil, now), "never-changed password invalidates nothing")

	// Token issued well before the change is stale
	assert.True(t, WasChangedAfter(&changed, now.Add(-time.Hour)))

	// Token issued after the change stays valid
	assert.False(t, WasChangedAfter(&changed, now.Add(time.Hour)))

	// Issued in the same instant as the change, inside the skew window
	assert.False(t, WasChangedAfter(&changed, now))
	assert.False(t, WasChangedAfter(&changed, now.Add(-passwordChangeSkew)))
	assert.True(t, WasChangedAfter(&changed, now.Add(-passwordChangeSkew-time.Millisecond)))
}
