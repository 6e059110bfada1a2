package openleads

import (
	"errors"
	"net/http"
	"time"
)

// Config defines every tunable of the engine. Configure once, treat as
// immutable after [Builder.Build].
type Config struct {
	OTP    OTPConfig
	JWT    JWTConfig
	Cookie CookieConfig
	Audit  AuditConfig
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig tunes issuance, verification, and the three rate-limit levels.
// Zero values are rejected by Validate; use [DefaultConfig] for the
// production defaults.
type OTPConfig struct {
	// CodeTTL bounds how long an issued code verifies.
	CodeTTL time.Duration
	// CooldownTTL blocks immediate re-requests after an issue.
	CooldownTTL time.Duration
	// RequestWindow is the sliding window for the request counter. The
	// window TTL is re-armed on every increment.
	RequestWindow time.Duration
	// MaxRequests is the number of requests allowed inside the window
	// before the spam lock engages.
	MaxRequests int
	// MaxAttempts is the number of wrong codes tolerated before the
	// verification lock engages and the live code is destroyed.
	MaxAttempts int
	// LockTTL is the duration of the failed-attempt verification lock.
	LockTTL time.Duration
	// SpamLockTTL is the duration of the request spam lock.
	SpamLockTTL time.Duration
	// KeyPrefix namespaces all OTP state in Redis.
	KeyPrefix string
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds the signing material for the session issuer. Access and
// refresh tokens are signed with distinct HS256 secrets and carry distinct
// expirations.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig controls the transport of session tokens. Secure is tied to
// the deployment environment by the caller; both cookies are always
// HTTP-only.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	SameSite    http.SameSite
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
}

// DefaultConfig returns the production defaults: 5-minute codes, 1-minute
// cooldown, 3 requests per sliding hour, 3 attempts before a 30-minute
// lock, 1-day access and 7-day refresh tokens.
func DefaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			CodeTTL:       5 * time.Minute,
			CooldownTTL:   time.Minute,
			RequestWindow: time.Hour,
			MaxRequests:   3,
			MaxAttempts:   3,
			LockTTL:       30 * time.Minute,
			SpamLockTTL:   time.Hour,
			KeyPrefix:     "otp",
		},
		JWT: JWTConfig{
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "openleads",
		},
		Cookie: CookieConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			Path:        "/",
			Secure:      true,
			SameSite:    http.SameSiteStrictMode,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
		},
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.OTP.CodeTTL <= 0 || c.OTP.CooldownTTL <= 0 || c.OTP.RequestWindow <= 0 {
		return errors.New("otp TTLs must be positive")
	}
	if c.OTP.LockTTL <= 0 || c.OTP.SpamLockTTL <= 0 {
		return errors.New("otp lock TTLs must be positive")
	}
	if c.OTP.MaxRequests <= 0 || c.OTP.MaxAttempts <= 0 {
		return errors.New("otp limits must be positive")
	}
	if c.OTP.CooldownTTL > c.OTP.CodeTTL {
		return errors.New("otp cooldown must not outlive the code")
	}
	if c.OTP.KeyPrefix == "" {
		return errors.New("otp key prefix required")
	}
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("jwt secrets required")
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("jwt access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt TTLs must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("refresh TTL must not be shorter than access TTL")
	}
	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("cookie names required")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.JWT.AccessSecret = append([]byte(nil), c.JWT.AccessSecret...)
	out.JWT.RefreshSecret = append([]byte(nil), c.JWT.RefreshSecret...)
	return out
}
