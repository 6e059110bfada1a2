// Package middleware provides the net/http guard that validates the access
// token on protected routes and places the authenticated identity in the
// request context.
package middleware
