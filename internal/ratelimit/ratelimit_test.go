package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dompet-pintar/waitlist-api/internal/waitlist/store"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 29, hour, 30, 0, 0, time.Local)
	}
}

func TestLimiter_AllowUntilLimit(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	l := New(st, 5, WithClock(fixedClock(9)))
	ctx := context.Background()
	ip := "10.1.2.3"

	for i := 1; i <= 5; i++ {
		ok, err := l.Allow(ctx, ip)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !ok {
			t.Fatalf("Allow() = false on attempt %d, want true", i)
		}
		if err := l.Record(ctx, ip); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	// The 6th signup within the same hour is rejected.
	ok, err := l.Allow(ctx, ip)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if ok {
		t.Error("Allow() = true after limit reached, want false")
	}

	// A different IP in the same window is unaffected.
	ok, err = l.Allow(ctx, "10.9.9.9")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !ok {
		t.Error("Allow() = false for fresh IP, want true")
	}
}

func TestLimiter_HourRollover(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	ctx := context.Background()
	ip := "10.1.2.3"

	l := New(st, 5, WithClock(fixedClock(9)))
	for i := 0; i < 5; i++ {
		if err := l.Record(ctx, ip); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if ok, _ := l.Allow(ctx, ip); ok {
		t.Fatal("Allow() = true at limit, want false")
	}

	// Wall-clock hour rolls over: the same IP is immediately unblocked.
	// This is the hour-of-day bucket semantic, not a rolling window.
	l = New(st, 5, WithClock(fixedClock(10)))
	ok, err := l.Allow(ctx, ip)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !ok {
		t.Error("Allow() = false after hour rollover, want true")
	}
}

func TestLimiter_DefaultLimit(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	l := New(st, 0)
	if l.limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", l.limit, DefaultLimit)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.1:54321",
			want:       "192.0.2.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.1",
			want:       "192.0.2.1",
		},
		{
			name:       "x-forwarded-for single hop",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.50",
			want:       "203.0.113.50",
		},
		{
			name:       "x-forwarded-for multiple hops takes first",
			remoteAddr: "10.0.0.1:1234",
			xff:        "203.0.113.50, 70.41.3.18, 150.172.238.178",
			want:       "203.0.113.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/signup", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
