package model

import (
	"testing"
	"time"
)

// TestDefaultSettings tests the install-time defaults.
func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	if !s.AutoScan || !s.ShowNotifications {
		t.Errorf("expected both settings enabled, got %+v", s)
	}
}

// TestIPEntryBlocked tests the derived blocked/active state.
func TestIPEntryBlocked(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	t.Run("future deadline is blocked", func(t *testing.T) {
		t.Parallel()
		e := IPEntry{BlockedUntil: float64(now.Unix() + 60)}
		if !e.Blocked(now) || e.State(now) != "blocked" {
			t.Error("expected blocked")
		}
	})

	t.Run("past deadline is active", func(t *testing.T) {
		t.Parallel()
		e := IPEntry{BlockedUntil: float64(now.Unix() - 60)}
		if e.Blocked(now) || e.State(now) != "active" {
			t.Error("expected active")
		}
	})

	t.Run("zero deadline is active", func(t *testing.T) {
		t.Parallel()
		if (IPEntry{}).Blocked(now) {
			t.Error("expected active")
		}
	})
}

// TestEmailEmpty tests the empty-email rule.
func TestEmailEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email Email
		want  bool
	}{
		{"all empty", Email{}, true},
		{"subject only", Email{Subject: "hello"}, true},
		{"sender only", Email{Sender: "a@b.com"}, false},
		{"body only", Email{Body: "click here"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.email.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
