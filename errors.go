package openleads

import (
	"errors"
	"net/http"
	"time"
)

// ErrorKind classifies a failure for HTTP mapping and client handling.
type ErrorKind int

const (
	// KindValidation covers malformed input, incorrect OTPs, and expired
	// OTPs. The caller can retry with corrected input.
	KindValidation ErrorKind = iota
	// KindAuth covers credential mismatches and missing or invalid session
	// tokens. Recoverable only by re-authenticating.
	KindAuth
	// KindRateLimit covers cooldowns, spam locks, and failed-attempt
	// lockouts. The caller must wait out RetryAfter.
	KindRateLimit
)

// Sentinel errors returned (wrapped in [*Error]) by Engine methods.
// Match with errors.Is.
var (
	// ErrOTPInvalid is returned when no live OTP exists for the email or
	// when the submitted code does not match. TTL expiry is deliberately
	// indistinguishable from never having requested a code.
	ErrOTPInvalid = errors.New("invalid or expired OTP")
	// ErrOTPLocked is returned while the failed-attempt lock is active.
	ErrOTPLocked = errors.New("otp verification locked")
	// ErrOTPSpamLocked is returned while the request spam lock is active.
	ErrOTPSpamLocked = errors.New("otp requests locked")
	// ErrOTPCooldown is returned when a new OTP is requested before the
	// issuance cooldown has elapsed.
	ErrOTPCooldown = errors.New("otp cooldown active")
	// ErrInvalidCredentials is returned on login when the email is unknown
	// or the password does not match. The two cases are collapsed so the
	// endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists is returned when registration targets an email that
	// already has an account.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned by [AccountProvider] implementations
	// when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountGone is returned on refresh when the token verifies but the
	// underlying account no longer exists.
	ErrAccountGone = errors.New("account no longer exists")
	// ErrTokenMissing is returned when no session token was presented.
	ErrTokenMissing = errors.New("missing token")
	// ErrTokenInvalid is returned when a session token fails signature or
	// expiry validation.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrPasswordReuse is returned when a password reset submits the
	// current password as the new one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrEngineNotReady is returned when an Engine method is called on an
	// engine missing a required collaborator.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrStoreUnavailable wraps Redis failures.
	ErrStoreUnavailable = errors.New("otp store unavailable")
	// ErrMailerUnavailable wraps delivery collaborator failures.
	ErrMailerUnavailable = errors.New("mail delivery unavailable")
)

// Error is the typed rejection carried by every user-visible failure. It
// wraps one of the sentinel errors above so callers can branch with
// errors.Is while the HTTP layer maps Kind to a status code uniformly.
type Error struct {
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
	cause      error
}

// Error returns the user-facing message.
func (e *Error) Error() string { return e.Message }

// Unwrap exposes the sentinel cause for errors.Is matching.
func (e *Error) Unwrap() error { return e.cause }

func validationError(cause error, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, cause: cause}
}

func authError(cause error, message string) *Error {
	return &Error{Kind: KindAuth, Message: message, cause: cause}
}

func rateLimitError(cause error, message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimit, Message: message, RetryAfter: retryAfter, cause: cause}
}

// HTTPStatus maps the error kind to its HTTP status class.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

// HTTPStatusFor resolves any error returned by Engine methods to an HTTP
// status. Untyped errors (store or mailer outages) map to 500.
func HTTPStatusFor(err error) int {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// UserMessage returns the message safe to show a client. Untyped errors
// collapse to a generic message so internals never leak.
func UserMessage(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return "internal server error"
}
