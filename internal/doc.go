// Package internal holds the Redis key layout and code generation shared by
// the openleads engine. Nothing here is part of the public API.
package internal
