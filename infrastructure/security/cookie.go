package security

import (
	"net/http"
	"time"

	"github.com/banterhq/banter/infrastructure/token"
)

type cookieConfig struct {
	name   string
	value  string
	maxAge int
	secure bool
}

func setAuthCookie(w http.ResponseWriter, cfg cookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name,
		Value:    cfg.value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   cfg.maxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.secure,
	})
}

func SetTokenCookies(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration, secure bool) {
	setAuthCookie(w, cookieConfig{
		name:   token.AccessCookie,
		value:  accessToken,
		maxAge: int(accessTTL.Seconds()),
		secure: secure,
	})
	setAuthCookie(w, cookieConfig{
		name:   token.RefreshCookie,
		value:  refreshToken,
		maxAge: int(refreshTTL.Seconds()),
		secure: secure,
	})
}

func ClearTokenCookies(w http.ResponseWriter, secure bool) {
	setAuthCookie(w, cookieConfig{name: token.AccessCookie, maxAge: -1, secure: secure})
	setAuthCookie(w, cookieConfig{name: token.RefreshCookie, maxAge: -1, secure: secure})
}
