package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Counter is the subset of the Redis cache the throttle needs
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, keys ...string) error
}

// Throttle applies progressive lockouts to repeated failed sign-ins for
// one email address. A nil counter disables it. Counter failures never
// block a sign-in.
type Throttle struct {
	counter Counter
	window  time.Duration
}

func NewThrottle(counter Counter) *Throttle {
	return &Throttle{counter: counter, window: 15 * time.Minute}
}

func attemptKey(email string) string {
	return fmt.Sprintf("signin:attempts:%s", strings.ToLower(email))
}

func lockKey(email string) string {
	return fmt.Sprintf("signin:lock:%s", strings.ToLower(email))
}

// Locked reports whether email is locked out and for how long
func (t *Throttle) Locked(ctx context.Context, email string) (bool, time.Duration) {
	if t == nil || t.counter == nil {
		return false, 0
	}

	locked, err := t.counter.Exists(ctx, lockKey(email))
	if err != nil {
		zap.S().Warnf("[IDENTITY] throttle check failed: %v", err)
		return false, 0
	}
	if !locked {
		return false, 0
	}

	ttl, err := t.counter.TTL(ctx, lockKey(email))
	if err != nil || ttl < 0 {
		ttl = time.Minute
	}
	return true, ttl
}

// RecordFailure counts a failed attempt and applies the lockout it earns
func (t *Throttle) RecordFailure(ctx context.Context, email string) {
	if t == nil || t.counter == nil {
		return
	}

	attempts, err := t.counter.Increment(ctx, attemptKey(email))
	if err != nil {
		zap.S().Warnf("[IDENTITY] throttle increment failed: %v", err)
		return
	}
	if attempts == 1 {
		if err := t.counter.Expire(ctx, attemptKey(email), t.window); err != nil {
			zap.S().Warnf("[IDENTITY] throttle expire failed: %v", err)
		}
	}

	lockDuration := LockoutFor(attempts)
	if lockDuration == 0 {
		return
	}
	if err := t.counter.Set(ctx, lockKey(email), "locked", lockDuration); err != nil {
		zap.S().Warnf("[IDENTITY] throttle lock failed: %v", err)
	}
}

// RecordSuccess clears the attempt counter and any lock
func (t *Throttle) RecordSuccess(ctx context.Context, email string) {
	if t == nil || t.counter == nil {
		return
	}
	if err := t.counter.Delete(ctx, attemptKey(email), lockKey(email)); err != nil {
		zap.S().Warnf("[IDENTITY] throttle reset failed: %v", err)
	}
}

// LockoutFor returns the lockout earned by the given number of failures
func LockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}
