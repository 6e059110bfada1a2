package openleads

import (
	"context"
	"time"
)

// Identity is the subject encoded into session tokens.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// SessionTokens carries a freshly issued access/refresh pair along with the
// expirations the cookie layer mirrors into Max-Age.
type SessionTokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Account is the minimal account record this core reads. The surrounding
// CRUD system owns the full relational row; only these fields matter here.
type Account struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// CreateAccountInput is passed to [AccountProvider.CreateAccount] once an
// OTP-gated registration completes.
type CreateAccountInput struct {
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// AccountProvider is the interface callers implement to integrate the
// engine with their account database. Lookups must return
// [ErrAccountNotFound] (possibly wrapped) when no row matches.
type AccountProvider interface {
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	GetAccountByID(ctx context.Context, id string) (Account, error)
	CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

// Mailer delivers an OTP to an address using a named template with
// {name, otp} substitution. Implementations decide transport and rendering;
// the engine only guarantees send-before-store ordering.
type Mailer interface {
	Send(ctx context.Context, to, templateID string, data map[string]string) error
}

// AuditEvent is emitted asynchronously for every auth-flow outcome.
type AuditEvent struct {
	Time    time.Time
	Event   string
	Email   string
	Success bool
	Err     string
}

// AuditSink receives audit events from the dispatcher. Emit must not block
// for long; the dispatcher's buffer is bounded and overflow is dropped.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards all audit events.
type NoOpSink struct{}

// Emit implements [AuditSink].
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// Audit event names.
const (
	auditEventOTPRequest     = "otp.request"
	auditEventOTPVerify      = "otp.verify"
	auditEventLogin          = "login"
	auditEventRegister       = "register"
	auditEventPasswordReset  = "password.reset"
	auditEventSessionRefresh = "session.refresh"
)
