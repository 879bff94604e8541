package token

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/banterhq/banter/infrastructure/config"
)

// ErrUnauthenticated covers every credential failure: missing, malformed,
// expired, bad signature. Callers must not be able to tell which one it was.
var ErrUnauthenticated = errors.New("unauthenticated")

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access/refresh token pairs.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		accessSecret:  []byte(cfg.Auth.AccessTokenSecret),
		refreshSecret: []byte(cfg.Auth.RefreshTokenSecret),
		accessExpiry:  cfg.Auth.AccessTokenExpiry,
		refreshExpiry: cfg.Auth.RefreshTokenExpiry,
		issuer:        cfg.Auth.Issuer,
	}
}

func (m *Manager) IssueAccessToken(userID string) (string, error) {
	return m.issue(userID, m.accessSecret, m.accessExpiry)
}

func (m *Manager) IssueRefreshToken(userID string) (string, error) {
	return m.issue(userID, m.refreshSecret, m.refreshExpiry)
}

func (m *Manager) issue(userID string, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccessToken resolves a credential string to a user id. Any failure
// collapses into ErrUnauthenticated.
func (m *Manager) VerifyAccessToken(credential string) (string, error) {
	return m.verify(credential, m.accessSecret)
}

func (m *Manager) VerifyRefreshToken(credential string) (string, error) {
	return m.verify(credential, m.refreshSecret)
}

func (m *Manager) verify(credential string, secret []byte) (string, error) {
	if credential == "" {
		return "", ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return secret, nil
	})
	if err != nil {
		return "", ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrUnauthenticated
	}

	return claims.UserID, nil
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessExpiry
}

func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshExpiry
}

// FromRequest extracts the bearer credential from a request: the accessToken
// cookie, the Authorization header, or the token query parameter, in that
// order. Returns "" when none is present.
func FromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return r.URL.Query().Get("token")
}
