// Package session transports openleads session tokens as HTTP-only
// cookies. The refresh token is read back from its cookie with an
// Authorization bearer header as fallback for non-browser clients.
package session
