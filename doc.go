// Package openleads implements the authentication core of the Open Leads
// platform: OTP-gated registration and password reset, rate-limited OTP
// issuance and verification backed by Redis TTL state, and JWT session
// issuance with access/refresh cookie transport.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// openleads is the public surface. It exposes [Engine], [Builder], [Config],
// the [Error] taxonomy, and the collaborator interfaces ([AccountProvider],
// [Mailer], [AuditSink]). Redis key layout and code generation live under
// internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Own the relational account schema. Account reads and writes go through
//     the injected [AccountProvider]; the pgstore subpackage is one adapter.
//   - Deliver email itself. OTP delivery goes through the injected [Mailer].
//   - Leak internal detail to callers. Every failure a client can act on is
//     an [*Error] with a user-facing message and an HTTP status class.
//
// # State model
//
// All OTP and rate-limit state is ephemeral, keyed by email, and bounded by
// Redis TTLs. A process restart loses nothing worth recovering: an in-flight
// OTP simply expires and the user requests a new one.
package openleads
