package waitlist

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dompet-pintar/waitlist-api/internal/waitlist/store"
)

func addRecord(t *testing.T, st store.Store, email, ts string) {
	t.Helper()
	_, err := st.AddSignup(context.Background(), store.Signup{
		Email:     email,
		Timestamp: ts,
		Source:    "https://dompet-pintar.example/",
		UserAgent: "test-agent",
	})
	if err != nil {
		t.Fatalf("AddSignup(%q) error = %v", email, err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.com ", "alice@example.com"},
		{"  BOB@EXAMPLE.COM", "bob@example.com"},
		{"carol@example.com", "carol@example.com"},
		{"\tdave@Example.Com\n", "dave@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestService_Join(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	svc := NewService(st)
	ctx := context.Background()

	pos, err := svc.Join(ctx, "alice@example.com", "", "")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if pos != 1 {
		t.Errorf("Join() position = %d, want 1", pos)
	}

	signups, err := st.Signups(ctx)
	if err != nil {
		t.Fatalf("Signups() error = %v", err)
	}
	if len(signups) != 1 {
		t.Fatalf("Signups() len = %d, want 1", len(signups))
	}

	rec := signups[0]
	if rec.Source != "direct" {
		t.Errorf("Source = %q, want %q", rec.Source, "direct")
	}
	if rec.UserAgent != "unknown" {
		t.Errorf("UserAgent = %q, want %q", rec.UserAgent, "unknown")
	}
	if _, err := time.Parse(time.RFC3339, rec.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", rec.Timestamp, err)
	}

	_, err = svc.Join(ctx, "alice@example.com", "", "")
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("Join() duplicate error = %v, want ErrDuplicateEmail", err)
	}
}

func TestService_Stats(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	svc := NewService(st)
	ctx := context.Background()

	today := time.Now().UTC().Format("2006-01-02")
	addRecord(t, st, "old1@example.com", "2026-08-01T10:00:00Z")
	addRecord(t, st, "old2@example.com", "2026-08-01T11:00:00Z")
	addRecord(t, st, "new1@example.com", today+"T08:00:00Z")
	addRecord(t, st, "new2@example.com", today+"T09:00:00Z")

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", stats.TotalCount)
	}
	if stats.TodayCount != 2 {
		t.Errorf("TodayCount = %d, want 2", stats.TodayCount)
	}
	if got := stats.DailyStats["2026-08-01"]; got != 2 {
		t.Errorf("DailyStats[2026-08-01] = %d, want 2", got)
	}
	if got := stats.DailyStats[today]; got != 2 {
		t.Errorf("DailyStats[%s] = %d, want 2", today, got)
	}

	// Newest first.
	if len(stats.Signups) != 4 {
		t.Fatalf("Signups len = %d, want 4", len(stats.Signups))
	}
	if stats.Signups[0].Email != "new2@example.com" {
		t.Errorf("Signups[0].Email = %q, want new2@example.com", stats.Signups[0].Email)
	}
	if stats.Signups[3].Email != "old1@example.com" {
		t.Errorf("Signups[3].Email = %q, want old1@example.com", stats.Signups[3].Email)
	}
}

func TestService_ExportCSV(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	svc := NewService(st)
	ctx := context.Background()

	addRecord(t, st, "alice@example.com", "2026-08-01T14:30:05Z")
	addRecord(t, st, "bob@example.com", "2026-08-02T09:15:00Z")

	data, err := svc.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, "Email,Signup Date,Time,Source") {
		t.Errorf("ExportCSV() missing header, got %q", out)
	}

	// Every field is quoted.
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("ExportCSV() line count = %d, want 3", len(lines))
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			t.Errorf("ExportCSV() row not fully quoted: %q", line)
		}
	}

	// The output round-trips through a standard CSV reader with one row per
	// signup.
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("parsed row count = %d, want 3", len(records))
	}
	if records[1][0] != "alice@example.com" {
		t.Errorf("row 1 email = %q, want alice@example.com", records[1][0])
	}
	if records[1][1] != "8/1/2026" {
		t.Errorf("row 1 date = %q, want 8/1/2026", records[1][1])
	}
	if records[1][2] != "2:30:05 PM" {
		t.Errorf("row 1 time = %q, want 2:30:05 PM", records[1][2])
	}
	if records[2][0] != "bob@example.com" {
		t.Errorf("row 2 email = %q, want bob@example.com", records[2][0])
	}
}

func TestService_ExportCSV_Empty(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	data, err := NewService(st).ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if got := string(data); got != "Email,Signup Date,Time,Source" {
		t.Errorf("ExportCSV() on empty store = %q, want header only", got)
	}
}

func TestService_Clear(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	svc := NewService(st)
	ctx := context.Background()

	addRecord(t, st, "alice@example.com", "2026-08-01T14:30:05Z")
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	count, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after clear = %d, want 0", count)
	}
}
