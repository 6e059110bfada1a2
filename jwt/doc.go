// Package jwt issues and verifies the HS256 session tokens used by the
// openleads engine. Access and refresh tokens are signed with distinct
// secrets and carry distinct lifetimes, so one can never stand in for the
// other.
package jwt
