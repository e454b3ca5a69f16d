package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "zhongyue-admin", time.Hour, 24*time.Hour)
	user := &models.User{ID: 42, Username: "wang"}

	pair, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshID)
	assert.True(t, pair.RefreshExpires.After(pair.AccessExpires))

	claims, err := m.Parse(pair.AccessToken, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "wang", claims.Username)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	refresh, err := m.Parse(pair.RefreshToken, TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshID, refresh.ID)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", "zhongyue-admin", time.Hour, 24*time.Hour)
	user := &models.User{ID: 1, Username: "wang"}

	pair, err := m.Issue(user)
	require.NoError(t, err)

	_, err = m.Parse(pair.RefreshToken, TokenAccess)
	require.ErrorIs(t, err, ErrWrongTokenKind)

	other := NewTokenManager("other", "zhongyue-admin", time.Hour, time.Hour)
	_, err = other.Parse(pair.AccessToken, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	foreign := NewTokenManager("secret", "someone-else", time.Hour, time.Hour)
	_, err = foreign.Parse(pair.AccessToken, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("garbage", TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("secret", "", time.Minute, time.Hour)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	pair, err := m.Issue(&models.User{ID: 1, Username: "wang"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }

	_, err = m.Parse(pair.AccessToken, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse(pair.RefreshToken, TokenRefresh)
	require.NoError(t, err)
}
