package openleads

import (
	"context"
	"errors"
	"fmt"

	"github.com/openleads/openleads/internal"
)

// Template IDs handed to the [Mailer] by the built-in flows.
const (
	TemplateRegistrationOTP  = "otp-registration"
	TemplatePasswordResetOTP = "otp-password-reset"
)

// DefaultRole is assigned to accounts created through registration.
const DefaultRole = "agent"

const minPasswordLength = 8

// RegisterInput carries the fields a registration submits alongside the
// verification code.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// BeginRegistration starts an OTP-gated registration: the email must not
// already have an account, then the full issuance path (guard, tracker,
// issuer) runs with the registration template.
func (e *Engine) BeginRegistration(ctx context.Context, name, email string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	_, err := e.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		rejection := validationError(ErrAccountExists, "an account with this email already exists")
		e.emitAudit(ctx, auditEventRegister, email, false, rejection)
		return rejection
	}
	if !errors.Is(err, ErrAccountNotFound) {
		e.emitAudit(ctx, auditEventRegister, email, false, err)
		return err
	}

	return e.RequestOTP(ctx, name, email, TemplateRegistrationOTP)
}

// CompleteRegistration consumes the verification code, creates the account,
// and issues the first session. The OTP is destroyed on success, so a
// replayed completion fails at verification.
func (e *Engine) CompleteRegistration(ctx context.Context, input RegisterInput, code string) (SessionTokens, error) {
	if e == nil || e.accounts == nil || e.hasher == nil {
		return SessionTokens{}, ErrEngineNotReady
	}
	email := internal.NormalizeEmail(input.Email)

	if len(input.Password) < minPasswordLength {
		rejection := validationError(nil, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		e.emitAudit(ctx, auditEventRegister, email, false, rejection)
		return SessionTokens{}, rejection
	}

	if err := e.VerifyOTP(ctx, email, code); err != nil {
		e.emitAudit(ctx, auditEventRegister, email, false, err)
		return SessionTokens{}, err
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventRegister, email, false, err)
		return SessionTokens{}, err
	}

	account, err := e.accounts.CreateAccount(ctx, CreateAccountInput{
		Name:         input.Name,
		Email:        email,
		Role:         DefaultRole,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			rejection := validationError(ErrAccountExists, "an account with this email already exists")
			e.emitAudit(ctx, auditEventRegister, email, false, rejection)
			return SessionTokens{}, rejection
		}
		e.emitAudit(ctx, auditEventRegister, email, false, err)
		return SessionTokens{}, err
	}

	tokens, err := e.IssueSession(ctx, Identity{ID: account.ID, Email: account.Email, Role: account.Role})
	if err != nil {
		e.emitAudit(ctx, auditEventRegister, email, false, err)
		return SessionTokens{}, err
	}

	e.emitAudit(ctx, auditEventRegister, email, true, nil)
	return tokens, nil
}
