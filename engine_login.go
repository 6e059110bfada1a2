package openleads

import (
	"context"
	"errors"

	"github.com/openleads/openleads/internal"
	"github.com/openleads/openleads/password"
)

// Login verifies an email/password pair and issues a session. Unknown
// emails and wrong passwords collapse to the same rejection so the endpoint
// cannot be used to probe which addresses have accounts.
func (e *Engine) Login(ctx context.Context, email, pass string) (SessionTokens, error) {
	if e == nil || e.accounts == nil || e.hasher == nil {
		return SessionTokens{}, ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	account, err := e.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			rejection := authError(ErrInvalidCredentials, "invalid email or password")
			e.emitAudit(ctx, auditEventLogin, email, false, rejection)
			return SessionTokens{}, rejection
		}
		e.emitAudit(ctx, auditEventLogin, email, false, err)
		return SessionTokens{}, err
	}

	if err := e.hasher.Verify(pass, account.PasswordHash); err != nil {
		if errors.Is(err, password.ErrMismatch) || errors.Is(err, password.ErrMalformedHash) {
			rejection := authError(ErrInvalidCredentials, "invalid email or password")
			e.emitAudit(ctx, auditEventLogin, email, false, rejection)
			return SessionTokens{}, rejection
		}
		e.emitAudit(ctx, auditEventLogin, email, false, err)
		return SessionTokens{}, err
	}

	tokens, err := e.IssueSession(ctx, Identity{ID: account.ID, Email: account.Email, Role: account.Role})
	if err != nil {
		e.emitAudit(ctx, auditEventLogin, email, false, err)
		return SessionTokens{}, err
	}

	e.emitAudit(ctx, auditEventLogin, email, true, nil)
	return tokens, nil
}
