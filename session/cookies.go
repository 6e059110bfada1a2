package session

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig mirrors openleads.CookieConfig for the transport layer.
// Secure is tied to the deployment environment by the caller; HttpOnly is
// not configurable because these cookies must never be script-readable.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	SameSite    http.SameSite
}

// Write sets both session cookies. Each cookie's Max-Age matches its
// token's remaining lifetime, so cookie expiry and token expiry stay in
// step.
func Write(w http.ResponseWriter, cfg CookieConfig, access, refresh string, accessExpiresAt, refreshExpiresAt time.Time) {
	writeCookie(w, cfg, cfg.AccessName, access, accessExpiresAt)
	writeCookie(w, cfg, cfg.RefreshName, refresh, refreshExpiresAt)
}

// WriteAccess sets only the access cookie. Used by the refresh endpoint,
// which leaves the original refresh cookie untouched.
func WriteAccess(w http.ResponseWriter, cfg CookieConfig, access string, expiresAt time.Time) {
	writeCookie(w, cfg, cfg.AccessName, access, expiresAt)
}

func writeCookie(w http.ResponseWriter, cfg CookieConfig, name, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath(cfg),
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// Clear expires both session cookies. Used by logout.
func Clear(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{cfg.AccessName, cfg.RefreshName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     cookiePath(cfg),
			Domain:   cfg.Domain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: cfg.SameSite,
		})
	}
}

// ReadAccessToken extracts the access token from its cookie, falling back
// to an Authorization bearer header.
func ReadAccessToken(r *http.Request, cfg CookieConfig) string {
	if c, err := r.Cookie(cfg.AccessName); err == nil && c.Value != "" {
		return c.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

// ReadRefreshToken extracts the refresh token from its cookie, falling back
// to an Authorization bearer header.
func ReadRefreshToken(r *http.Request, cfg CookieConfig) string {
	if c, err := r.Cookie(cfg.RefreshName); err == nil && c.Value != "" {
		return c.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) && len(header) > len(prefix) {
		return header[len(prefix):]
	}
	return ""
}

func cookiePath(cfg CookieConfig) string {
	if cfg.Path == "" {
		return "/"
	}
	return cfg.Path
}
