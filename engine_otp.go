package openleads

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/openleads/openleads/internal"
)

// CheckRestrictions rejects an OTP request before any code is generated if
// the email is locked out at any level. Pure read; nothing is mutated.
// Ordering matters and only the first condition found is reported:
// verification lock, then spam lock, then cooldown.
func (e *Engine) CheckRestrictions(ctx context.Context, email string) error {
	if e == nil || e.otp == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	locked, err := e.otp.IsLocked(ctx, email)
	if err != nil {
		return err
	}
	if locked {
		return rateLimitError(ErrOTPLocked,
			fmt.Sprintf("account locked due to too many failed attempts, try again in %s", humanDuration(e.config.OTP.LockTTL)),
			e.config.OTP.LockTTL)
	}

	spamLocked, err := e.otp.IsSpamLocked(ctx, email)
	if err != nil {
		return err
	}
	if spamLocked {
		return rateLimitError(ErrOTPSpamLocked,
			fmt.Sprintf("too many OTP requests, try again in %s", humanDuration(e.config.OTP.SpamLockTTL)),
			e.config.OTP.SpamLockTTL)
	}

	cooling, err := e.otp.InCooldown(ctx, email)
	if err != nil {
		return err
	}
	if cooling {
		return rateLimitError(ErrOTPCooldown,
			fmt.Sprintf("please wait %s before requesting a new OTP", humanDuration(e.config.OTP.CooldownTTL)),
			e.config.OTP.CooldownTTL)
	}

	return nil
}

// TrackRequest counts an OTP request inside the sliding window and
// escalates to the spam lock once the budget is exceeded. The increment and
// window re-arm happen in a single atomic round trip, so concurrent
// requests for the same email cannot both slip under the threshold.
func (e *Engine) TrackRequest(ctx context.Context, email string) error {
	if e == nil || e.otp == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	count, err := e.otp.IncrRequests(ctx, email, e.config.OTP.RequestWindow)
	if err != nil {
		return err
	}
	if count > int64(e.config.OTP.MaxRequests) {
		if err := e.otp.SetSpamLock(ctx, email, e.config.OTP.SpamLockTTL); err != nil {
			return err
		}
		return rateLimitError(ErrOTPSpamLocked,
			fmt.Sprintf("too many OTP requests, try again in %s", humanDuration(e.config.OTP.SpamLockTTL)),
			e.config.OTP.SpamLockTTL)
	}

	return nil
}

// SendOTP generates a fresh 4-digit code, delivers it through the mailer,
// and persists it with the issuance cooldown. Delivery happens before the
// store write: a failed send never strands a code nobody received, while a
// failed store after a successful send surfaces as an error the caller can
// retry. A previous live code is overwritten, so only the newest code
// verifies.
func (e *Engine) SendOTP(ctx context.Context, name, email, templateID string) error {
	if e == nil || e.otp == nil || e.mailer == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	code, err := internal.NewOTPCode()
	if err != nil {
		e.emitAudit(ctx, auditEventOTPRequest, email, false, err)
		return fmt.Errorf("otp generation: %w", err)
	}

	if err := e.mailer.Send(ctx, email, templateID, map[string]string{
		"name": name,
		"otp":  code,
	}); err != nil {
		e.emitAudit(ctx, auditEventOTPRequest, email, false, err)
		return fmt.Errorf("%w: %v", ErrMailerUnavailable, err)
	}

	if err := e.otp.SaveCode(ctx, email, code, e.config.OTP.CodeTTL, e.config.OTP.CooldownTTL); err != nil {
		e.emitAudit(ctx, auditEventOTPRequest, email, false, err)
		return err
	}

	e.emitAudit(ctx, auditEventOTPRequest, email, true, nil)
	return nil
}

// RequestOTP composes the full issuance path: restriction guard, request
// tracking, then issuance. This is what the HTTP handlers call.
func (e *Engine) RequestOTP(ctx context.Context, name, email, templateID string) error {
	if err := e.CheckRestrictions(ctx, email); err != nil {
		e.emitAudit(ctx, auditEventOTPRequest, internal.NormalizeEmail(email), false, err)
		return err
	}
	if err := e.TrackRequest(ctx, email); err != nil {
		e.emitAudit(ctx, auditEventOTPRequest, internal.NormalizeEmail(email), false, err)
		return err
	}
	return e.SendOTP(ctx, name, email, templateID)
}

// VerifyOTP validates a submitted code against the stored one with a
// bounded attempt budget. A missing or expired code costs no attempt; a
// mismatch increments the counter and the final mismatch destroys the code
// and arms the verification lock. On success the code and counter are
// deleted together, so the same code can never verify twice.
func (e *Engine) VerifyOTP(ctx context.Context, email, submitted string) error {
	if e == nil || e.otp == nil {
		return ErrEngineNotReady
	}
	email = internal.NormalizeEmail(email)

	locked, err := e.otp.IsLocked(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventOTPVerify, email, false, err)
		return err
	}
	if locked {
		rejection := rateLimitError(ErrOTPLocked,
			fmt.Sprintf("account locked due to too many failed attempts, try again in %s", humanDuration(e.config.OTP.LockTTL)),
			e.config.OTP.LockTTL)
		e.emitAudit(ctx, auditEventOTPVerify, email, false, rejection)
		return rejection
	}

	stored, ok, err := e.otp.GetCode(ctx, email)
	if err != nil {
		e.emitAudit(ctx, auditEventOTPVerify, email, false, err)
		return err
	}
	if !ok {
		rejection := validationError(ErrOTPInvalid, "invalid or expired OTP")
		e.emitAudit(ctx, auditEventOTPVerify, email, false, rejection)
		return rejection
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		attempts, err := e.otp.IncrAttempts(ctx, email, e.config.OTP.CodeTTL)
		if err != nil {
			e.emitAudit(ctx, auditEventOTPVerify, email, false, err)
			return err
		}

		if attempts >= int64(e.config.OTP.MaxAttempts) {
			if err := e.otp.Lock(ctx, email, e.config.OTP.LockTTL); err != nil {
				e.emitAudit(ctx, auditEventOTPVerify, email, false, err)
				return err
			}
			rejection := rateLimitError(ErrOTPLocked,
				fmt.Sprintf("too many failed attempts, verification locked for %s", humanDuration(e.config.OTP.LockTTL)),
				e.config.OTP.LockTTL)
			e.emitAudit(ctx, auditEventOTPVerify, email, false, rejection)
			return rejection
		}

		remaining := int64(e.config.OTP.MaxAttempts) - attempts
		rejection := validationError(ErrOTPInvalid,
			fmt.Sprintf("incorrect OTP, %d %s left", remaining, pluralAttempts(remaining)))
		e.emitAudit(ctx, auditEventOTPVerify, email, false, rejection)
		return rejection
	}

	if err := e.otp.ClearCode(ctx, email); err != nil {
		e.emitAudit(ctx, auditEventOTPVerify, email, false, err)
		return err
	}

	e.emitAudit(ctx, auditEventOTPVerify, email, true, nil)
	return nil
}

func pluralAttempts(n int64) string {
	if n == 1 {
		return "attempt"
	}
	return "attempts"
}

// humanDuration renders a TTL the way the client messages expect:
// "1 minute", "30 minutes", "1 hour".
func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		n := int64(d / time.Hour)
		if n == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", n)
	case d >= time.Minute:
		n := int64(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	default:
		return d.String()
	}
}
