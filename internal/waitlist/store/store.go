// Package store provides storage backends for the waitlist.
package store

import (
	"context"
	"errors"
)

// ErrDuplicateEmail is returned by AddSignup when the email already holds a
// membership marker.
var ErrDuplicateEmail = errors.New("email already on waitlist")

// Signup is one waitlist entry. Records are created once per unique email
// and never mutated; Timestamp is the ISO-8601 time of first signup.
type Signup struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	UserAgent string `json:"userAgent"`
}

// RateBucket tracks accepted signups for one client IP within a wall-clock
// hour-of-day. A stored bucket whose Hour differs from the current hour
// counts as empty.
type RateBucket struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// Store defines the interface for waitlist storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// AddSignup claims the membership marker for rec.Email and, when newly
	// claimed, appends rec to the signup list and increments the signup
	// counter, all as a single atomic operation. Returns the new counter
	// value (the signup's position) or ErrDuplicateEmail.
	AddSignup(ctx context.Context, rec Signup) (int64, error)

	// Exists reports whether a membership marker is present for the
	// normalized email.
	Exists(ctx context.Context, email string) (bool, error)

	// Count returns the current signup counter value. A missing counter
	// reads as 0.
	Count(ctx context.Context) (int64, error)

	// Signups returns every stored record in append (signup) order.
	Signups(ctx context.Context) ([]Signup, error)

	// Clear deletes all membership markers, empties the signup list, and
	// resets the counter to zero. Not reversible, and not isolated against
	// concurrent signups.
	Clear(ctx context.Context) error

	// RateStatus returns the accepted-signup count for ip within the given
	// hour-of-day. A missing, expired, or stale-hour bucket reads as 0.
	RateStatus(ctx context.Context, ip string, hour int) (int64, error)

	// RateBump records one accepted signup for ip within the given
	// hour-of-day, resetting the bucket when the stored hour differs, and
	// refreshes the one-hour expiry.
	RateBump(ctx context.Context, ip string, hour int) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
