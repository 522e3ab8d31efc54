package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := m.Issue(42, "alice", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret", time.Hour).Issue(1, "bob", "editor")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Issue(1, "bob", "editor")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseEmpty(t *testing.T) {
	_, err := NewTokenManager("secret", 0).Parse("  ")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearer("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearer("bearer   abc "))
	assert.Empty(t, ExtractBearer("Basic abc"))
	assert.Empty(t, ExtractBearer("Bearer "))
	assert.Empty(t, ExtractBearer(""))
}
