package token

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banterhq/banter/infrastructure/config"
)

func newTestManager(accessExpiry time.Duration) *Manager {
	return NewManager(&config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret-for-tests",
			RefreshTokenSecret: "refresh-secret-for-tests",
			AccessTokenExpiry:  accessExpiry,
			RefreshTokenExpiry: 24 * time.Hour,
			Issuer:             "banter-test",
		},
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(time.Minute)

	raw, err := m.IssueAccessToken("user-1")
	require.NoError(t, err)

	userID, err := m.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := newTestManager(time.Minute)

	raw, err := m.IssueRefreshToken("user-1")
	require.NoError(t, err)

	userID, err := m.VerifyRefreshToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAccessTokenRejectedByRefreshVerifier(t *testing.T) {
	m := newTestManager(time.Minute)

	raw, err := m.IssueAccessToken("user-1")
	require.NoError(t, err)

	_, err = m.VerifyRefreshToken(raw)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	m := newTestManager(-time.Minute) // already expired at issue time
	expired, err := m.IssueAccessToken("user-1")
	require.NoError(t, err)

	other := newTestManager(time.Minute)
	wrongSecret := NewManager(&config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:  "some-other-secret",
			RefreshTokenSecret: "another-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
	})
	forged, err := wrongSecret.IssueAccessToken("user-1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		credential string
	}{
		{name: "missing", credential: ""},
		{name: "garbage", credential: "not.a.jwt"},
		{name: "expired", credential: expired},
		{name: "wrong secret", credential: forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := other.VerifyAccessToken(tt.credential)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestFromRequestPrecedence(t *testing.T) {
	newRequest := func() *http.Request {
		r, _ := http.NewRequest(http.MethodGet, "http://localhost/api/v1/ws?token=from-query", nil)
		return r
	}

	t.Run("cookie wins", func(t *testing.T) {
		r := newRequest()
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-cookie", FromRequest(r))
	})

	t.Run("header beats query", func(t *testing.T) {
		r := newRequest()
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, "from-header", FromRequest(r))
	})

	t.Run("query as last resort", func(t *testing.T) {
		assert.Equal(t, "from-query", FromRequest(newRequest()))
	})

	t.Run("nothing present", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "http://localhost/api/v1/ws", nil)
		assert.Equal(t, "", FromRequest(r))
	})
}
