package internal

import "strings"

// Key layout, keyed by normalized email:
//
//	{prefix}:{email}                live OTP code
//	{prefix}_cooldown:{email}       issuance cooldown marker
//	{prefix}_request_count:{email}  requests inside the sliding window
//	{prefix}_spam_lock:{email}      request spam lock marker
//	{prefix}_attempts:{email}       failed verification attempts
//	{prefix}_lock:{email}           failed-attempt verification lock marker

// NormalizeEmail canonicalizes an address for keying. Format validation is
// the caller's job; this only makes "A@X.com" and "a@x.com " the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CodeKey returns the key holding the live OTP code.
func CodeKey(prefix, email string) string {
	return prefix + ":" + email
}

// CooldownKey returns the key for the issuance cooldown marker.
func CooldownKey(prefix, email string) string {
	return prefix + "_cooldown:" + email
}

// RequestCountKey returns the key for the sliding request counter.
func RequestCountKey(prefix, email string) string {
	return prefix + "_request_count:" + email
}

// SpamLockKey returns the key for the request spam lock marker.
func SpamLockKey(prefix, email string) string {
	return prefix + "_spam_lock:" + email
}

// AttemptsKey returns the key for the failed verification attempt counter.
func AttemptsKey(prefix, email string) string {
	return prefix + "_attempts:" + email
}

// LockKey returns the key for the verification lock marker.
func LockKey(prefix, email string) string {
	return prefix + "_lock:" + email
}
