package openleads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openleads/openleads/internal"
)

// otpStore owns all Redis round trips for OTP and rate-limit state. Every
// mutation that must be observed together travels in one pipeline so a
// concurrent request for the same email never sees a half-applied update.
type otpStore struct {
	redis  redis.UniversalClient
	prefix string
}

func newOTPStore(client redis.UniversalClient, prefix string) *otpStore {
	return &otpStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *otpStore) exists(ctx context.Context, key string) (bool, error) {
	n, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// IsLocked reports whether the failed-attempt verification lock is active.
func (s *otpStore) IsLocked(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, internal.LockKey(s.prefix, email))
}

// IsSpamLocked reports whether the request spam lock is active.
func (s *otpStore) IsSpamLocked(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, internal.SpamLockKey(s.prefix, email))
}

// InCooldown reports whether the issuance cooldown is active.
func (s *otpStore) InCooldown(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, internal.CooldownKey(s.prefix, email))
}

// IncrRequests atomically bumps the sliding request counter and re-arms its
// window TTL. INCR+EXPIRE in one pipeline closes the check-then-set race a
// separate read and write would leave open.
func (s *otpStore) IncrRequests(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := internal.RequestCountKey(s.prefix, email)

	var incr *redis.IntCmd
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return incr.Val(), nil
}

// SetSpamLock arms the request spam lock.
func (s *otpStore) SetSpamLock(ctx context.Context, email string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, internal.SpamLockKey(s.prefix, email), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SaveCode stores a freshly issued code and arms the cooldown in one
// pipeline. An earlier live code is overwritten, which also restarts its
// TTL and resets the attempt budget implicitly when the old attempts key
// expires.
func (s *otpStore) SaveCode(ctx context.Context, email, code string, codeTTL, cooldownTTL time.Duration) error {
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, internal.CodeKey(s.prefix, email), code, codeTTL)
		pipe.Set(ctx, internal.CooldownKey(s.prefix, email), "1", cooldownTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// GetCode fetches the live code. The second return is false when no code
// exists, which callers must treat the same as an expired one.
func (s *otpStore) GetCode(ctx context.Context, email string) (string, bool, error) {
	code, err := s.redis.Get(ctx, internal.CodeKey(s.prefix, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return code, true, nil
}

// IncrAttempts atomically bumps the failed-attempt counter, re-arming its
// TTL so the attempt window tracks the latest failure.
func (s *otpStore) IncrAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	key := internal.AttemptsKey(s.prefix, email)

	var incr *redis.IntCmd
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return incr.Val(), nil
}

// Lock arms the verification lock and destroys the live code and attempt
// counter together. After this, even the correct code cannot verify until
// the lock expires.
func (s *otpStore) Lock(ctx context.Context, email string, ttl time.Duration) error {
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, internal.LockKey(s.prefix, email), "1", ttl)
		pipe.Del(ctx, internal.CodeKey(s.prefix, email))
		pipe.Del(ctx, internal.AttemptsKey(s.prefix, email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ClearCode deletes the code and attempt counter together after a
// successful verification, so a used code can never be replayed.
func (s *otpStore) ClearCode(ctx context.Context, email string) error {
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, internal.CodeKey(s.prefix, email))
		pipe.Del(ctx, internal.AttemptsKey(s.prefix, email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
