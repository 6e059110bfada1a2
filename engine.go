package openleads

import (
	"context"
	"time"

	"github.com/openleads/openleads/jwt"
	"github.com/openleads/openleads/password"
)

// Engine orchestrates the OTP, login, registration, password-reset, and
// session flows. Build one through [Builder] at startup and share it; all
// methods are safe for concurrent use.
type Engine struct {
	config   Config
	otp      *otpStore
	accounts AccountProvider
	mailer   Mailer
	hasher   *password.Argon2
	tokens   *jwt.Manager
	audit    *auditDispatcher
}

// Close flushes and stops the audit dispatcher. Call on shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped due to a full
// buffer since startup.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) emitAudit(ctx context.Context, event, email string, success bool, cause error) {
	if e == nil || e.audit == nil {
		return
	}
	ev := AuditEvent{
		Time:    time.Now(),
		Event:   event,
		Email:   email,
		Success: success,
	}
	if cause != nil {
		ev.Err = cause.Error()
	}
	e.audit.Enqueue(ctx, ev)
}
