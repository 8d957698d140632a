package ratelimit

import (
	"context"
	"time"

	"github.com/storesync/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// Decision is the outcome of one admission check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before retrying
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed {
		return 0
	}
	wait := d.ResetAt.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Limiter is a fixed-window counter over a shared cache. Counters live in
// buckets keyed by identifier, endpoint class and window number, and expire
// with the window, so there is nothing to clean up.
//
// Fixed windows admit up to ~2x the nominal rate across a window boundary.
// That burst is accepted behaviour: sync agents schedule themselves against
// the advertised window, and a sliding window would change the semantics
// they depend on.
type Limiter struct {
	store  cache.Store
	logger *zap.Logger

	// now is swappable so tests can pin window boundaries
	now func() time.Time
}

// NewLimiter creates a limiter backed by the given cache store
func NewLimiter(store cache.Store, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger.Named("ratelimit"),
		now:    time.Now,
	}
}

// Allow checks and consumes one unit of the identifier's budget for the
// endpoint class. The counter increment is atomic across concurrent
// callers. When the cache is unreachable the limiter fails open: admitting
// excess traffic degrades service, rejecting everything stops it.
func (l *Limiter) Allow(ctx context.Context, identifier, endpointClass string, limit int, window time.Duration) Decision {
	now := l.now()
	bucket := now.Unix() / int64(window.Seconds())
	resetAt := time.Unix((bucket+1)*int64(window.Seconds()), 0)

	key := cache.RateLimitKey(identifier, endpointClass, bucket)
	count, err := l.store.Increment(ctx, key, window)
	if err != nil {
		l.logger.Warn("Cache unavailable, admitting request",
			zap.String("identifier", identifier),
			zap.String("endpoint_class", endpointClass),
			zap.Error(err),
		)
		return Decision{Allowed: true, Limit: limit, Remaining: limit, ResetAt: resetAt}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	// Soft warning at 80% so operators see pressure before rejections start
	if int(count) >= limit*8/10 && int(count) < limit {
		l.logger.Warn("Rate limit approaching",
			zap.String("identifier", identifier),
			zap.String("endpoint_class", endpointClass),
			zap.Int64("count", count),
			zap.Int("limit", limit),
		)
	}

	return Decision{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// SetClock replaces the limiter's clock. Test helper only.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}
