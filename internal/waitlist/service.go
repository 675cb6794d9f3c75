// Package waitlist implements the signup, stats, and export logic for the
// Dompet Pintar waitlist.
package waitlist

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dompet-pintar/waitlist-api/internal/waitlist/store"
)

// Signup is one waitlist entry.
type Signup = store.Signup

// Stats is the aggregate view returned to the admin panel: running totals
// plus a per-date histogram over the whole history.
type Stats struct {
	TotalCount int64          `json:"totalCount"`
	TodayCount int            `json:"todayCount"`
	Signups    []Signup       `json:"signups"`
	DailyStats map[string]int `json:"dailyStats"`
}

// Service owns email normalization, record assembly, and the aggregate
// queries derived from the signup log. All shared state lives in the store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a Service over the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// NormalizeEmail lowercases and trims an email address. Normalization runs
// before validation and duplicate detection, so "Alice@Example.com " and
// "alice@example.com" are the same signup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsRegistered reports whether the normalized email already holds a
// membership marker.
func (s *Service) IsRegistered(ctx context.Context, email string) (bool, error) {
	return s.store.Exists(ctx, email)
}

// Join records a signup for the already-normalized email and returns its
// position on the waitlist. Returns store.ErrDuplicateEmail when the email
// is already registered.
func (s *Service) Join(ctx context.Context, email, source, userAgent string) (int64, error) {
	if source == "" {
		source = "direct"
	}
	if userAgent == "" {
		userAgent = "unknown"
	}

	rec := Signup{
		Email:     email,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Source:    source,
		UserAgent: userAgent,
	}
	return s.store.AddSignup(ctx, rec)
}

// Count returns the current signup counter value.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Stats reads the full signup log and computes today's count (UTC calendar
// date) and the date→count histogram. Signups are returned newest first.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	signups, err := s.store.Signups(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Format("2006-01-02")
	daily := make(map[string]int, len(signups))
	todayCount := 0
	for _, rec := range signups {
		date := signupDate(rec.Timestamp)
		daily[date]++
		if date == today {
			todayCount++
		}
	}

	sorted := make([]Signup, len(signups))
	copy(sorted, signups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseTimestamp(sorted[i].Timestamp).After(parseTimestamp(sorted[j].Timestamp))
	})

	return &Stats{
		TotalCount: count,
		TodayCount: todayCount,
		Signups:    sorted,
		DailyStats: daily,
	}, nil
}

// Clear wipes every membership marker, the signup list, and the counter.
// Destructive and not reversible; no isolation against concurrent signups.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// signupDate extracts the calendar-date portion of a stored ISO-8601
// timestamp.
func signupDate(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

func parseTimestamp(ts string) time.Time {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}
