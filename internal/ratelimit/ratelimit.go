// Package ratelimit caps accepted signups per client IP.
//
// Buckets are keyed by the wall-clock hour of day, not a rolling 60-minute
// window: a client blocked at minute 59 is unblocked one minute later when
// the hour rolls over. Whether that is the intended product semantic is an
// open question; this package preserves it rather than silently converting
// to a sliding window.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dompet-pintar/waitlist-api/internal/waitlist/store"
)

// DefaultLimit is the number of accepted signups allowed per IP per
// wall-clock hour.
const DefaultLimit = 5

// Limiter enforces the per-IP signup cap over a shared store, so the limit
// holds across replicas.
type Limiter struct {
	store store.Store
	limit int64
	now   func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the clock used to derive the hour-of-day bucket.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter allowing limit accepted signups per IP per
// wall-clock hour. A limit <= 0 falls back to DefaultLimit.
func New(st store.Store, limit int, opts ...Option) *Limiter {
	l := &Limiter{
		store: st,
		limit: int64(limit),
		now:   time.Now,
	}
	if l.limit <= 0 {
		l.limit = DefaultLimit
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether ip may be accepted for another signup this hour.
// It does not consume budget; call Record after the signup is stored.
func (l *Limiter) Allow(ctx context.Context, ip string) (bool, error) {
	count, err := l.store.RateStatus(ctx, ip, l.now().Hour())
	if err != nil {
		return false, err
	}
	return count < l.limit, nil
}

// Record consumes one unit of ip's budget for the current hour.
func (l *Limiter) Record(ctx context.Context, ip string) error {
	return l.store.RateBump(ctx, ip, l.now().Hour())
}

// ClientIP extracts the client address for rate-limit keying. The first
// X-Forwarded-For hop wins when present (the service runs behind a proxy in
// production), otherwise the RemoteAddr host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
