package openleads

import (
	"context"
	"errors"
	"time"

	"github.com/openleads/openleads/jwt"
)

// IssueSession mints the access/refresh token pair for an authenticated
// identity. Access tokens live for Config.JWT.AccessTTL (1 day by default),
// refresh tokens for Config.JWT.RefreshTTL (7 days). Transport is the
// caller's concern; see the session subpackage for the cookie writer.
func (e *Engine) IssueSession(ctx context.Context, identity Identity) (SessionTokens, error) {
	if e == nil || e.tokens == nil {
		return SessionTokens{}, ErrEngineNotReady
	}
	if err := ctx.Err(); err != nil {
		return SessionTokens{}, err
	}

	access, accessExp, err := e.tokens.CreateAccess(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return SessionTokens{}, err
	}
	refresh, refreshExp, err := e.tokens.CreateRefresh(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return SessionTokens{}, err
	}

	return SessionTokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh validates a refresh token, confirms the account still exists, and
// issues a new access token. The refresh token is deliberately NOT rotated:
// the original stays valid until its own expiry, so the caller's refresh
// cookie is left untouched.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if e == nil || e.tokens == nil || e.accounts == nil {
		return "", time.Time{}, ErrEngineNotReady
	}
	if refreshToken == "" {
		rejection := authError(ErrTokenMissing, "missing refresh token")
		e.emitAudit(ctx, auditEventSessionRefresh, "", false, rejection)
		return "", time.Time{}, rejection
	}

	claims, err := e.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		rejection := authError(ErrTokenInvalid, "invalid or expired refresh token")
		e.emitAudit(ctx, auditEventSessionRefresh, "", false, rejection)
		return "", time.Time{}, rejection
	}

	account, err := e.accounts.GetAccountByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Distinct from a bad token internally, same 401 for the client.
			rejection := authError(ErrAccountGone, "invalid or expired refresh token")
			e.emitAudit(ctx, auditEventSessionRefresh, claims.Email, false, rejection)
			return "", time.Time{}, rejection
		}
		e.emitAudit(ctx, auditEventSessionRefresh, claims.Email, false, err)
		return "", time.Time{}, err
	}

	access, expiresAt, err := e.tokens.CreateAccess(account.ID, account.Email, account.Role)
	if err != nil {
		e.emitAudit(ctx, auditEventSessionRefresh, account.Email, false, err)
		return "", time.Time{}, err
	}

	e.emitAudit(ctx, auditEventSessionRefresh, account.Email, true, nil)
	return access, expiresAt, nil
}

// Validate checks an access token and returns the identity it encodes.
// Used by the middleware guard on every protected request.
func (e *Engine) Validate(ctx context.Context, accessToken string) (*Identity, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, authError(ErrTokenMissing, "missing access token")
	}

	claims, err := e.tokens.VerifyAccess(accessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalid) {
			return nil, authError(ErrTokenInvalid, "invalid or expired access token")
		}
		return nil, err
	}

	return &Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
