package openleads

import (
	"context"
	"errors"
	"fmt"

	"github.com/openleads/openleads/internal"
)

// BeginPasswordReset starts an OTP-gated password reset. When the email has
// no account the call still returns nil after the rate-limit checks, so the
// endpoint cannot be used to enumerate accounts. Rate-limit state is keyed
// by email either way.
func (e *Engine) BeginPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	if err := e.CheckRestrictions(ctx, email); err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}
	if err := e.TrackRequest(ctx, email); err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}

	account, err := e.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.emitAudit(ctx, auditEventPasswordReset, email, true, nil)
			return nil
		}
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}

	return e.SendOTP(ctx, account.Name, email, TemplatePasswordResetOTP)
}

// CompletePasswordReset consumes the verification code and replaces the
// account password. The new password must differ from the current one;
// rejections return early with a single, consistent propagation style.
func (e *Engine) CompletePasswordReset(ctx context.Context, email, code, newPassword string) error {
	if e == nil || e.accounts == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	if len(newPassword) < minPasswordLength {
		rejection := validationError(nil, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		e.emitAudit(ctx, auditEventPasswordReset, email, false, rejection)
		return rejection
	}

	if err := e.VerifyOTP(ctx, email, code); err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}

	account, err := e.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			rejection := authError(ErrAccountGone, "account no longer exists")
			e.emitAudit(ctx, auditEventPasswordReset, email, false, rejection)
			return rejection
		}
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}

	if e.hasher.Verify(newPassword, account.PasswordHash) == nil {
		rejection := validationError(ErrPasswordReuse, "new password must be different from the current password")
		e.emitAudit(ctx, auditEventPasswordReset, email, false, rejection)
		return rejection
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}
	if err := e.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, email, false, err)
		return err
	}

	e.emitAudit(ctx, auditEventPasswordReset, email, true, nil)
	return nil
}
