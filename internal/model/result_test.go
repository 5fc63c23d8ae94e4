package model

import "testing"

// TestScanResultPredicates tests the verdict helpers used by every component.
func TestScanResultPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		result         ScanResult
		blocksDownload bool
		banner         bool
		threat         bool
		safe           bool
	}{
		{"safe low score", ScanResult{Status: StatusSafe, Score: 5}, false, false, false, true},
		{"allowed counts as safe", ScanResult{Status: StatusAllowed, Score: 0}, false, false, false, true},
		{"phishing low score blocks download but no banner", ScanResult{Status: StatusPhishing, Score: 40}, true, false, true, false},
		{"phishing high score shows banner", ScanResult{Status: StatusPhishing, Score: 70}, true, true, true, false},
		{"suspicious high score blocks download", ScanResult{Status: StatusSuspicious, Score: 85}, true, false, false, false},
		{"suspicious just below threshold", ScanResult{Status: StatusSuspicious, Score: 69}, false, false, false, false},
		{"malicious is a threat", ScanResult{Status: StatusMalicious, Score: 90}, true, false, true, false},
		{"error never blocks", Failure("boom"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.result.BlocksDownload(); got != tt.blocksDownload {
				t.Errorf("BlocksDownload() = %v, want %v", got, tt.blocksDownload)
			}
			if got := tt.result.WarrantsBanner(); got != tt.banner {
				t.Errorf("WarrantsBanner() = %v, want %v", got, tt.banner)
			}
			if got := tt.result.IsThreat(); got != tt.threat {
				t.Errorf("IsThreat() = %v, want %v", got, tt.threat)
			}
			if got := tt.result.IsSafe(); got != tt.safe {
				t.Errorf("IsSafe() = %v, want %v", got, tt.safe)
			}
		})
	}
}

// TestFailure tests the synthesized error verdict.
func TestFailure(t *testing.T) {
	t.Parallel()

	t.Run("keeps details", func(t *testing.T) {
		t.Parallel()
		r := Failure("backend down")
		if r.Status != StatusError || r.Score != 0 || r.Details != "backend down" {
			t.Errorf("unexpected result %+v", r)
		}
	})

	t.Run("fills empty details", func(t *testing.T) {
		t.Parallel()
		if r := Failure(""); r.Details == "" {
			t.Error("expected generic details")
		}
	})
}

// TestSafeInternal tests the verdict for browser-internal pages.
func TestSafeInternal(t *testing.T) {
	t.Parallel()

	r := SafeInternal()
	if r.Status != StatusSafe || r.Score != 0 {
		t.Errorf("expected safe/0, got %+v", r)
	}
}

// TestNormalize tests score clamping and unknown status handling.
func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("clamps high score", func(t *testing.T) {
		t.Parallel()
		r := ScanResult{Status: StatusPhishing, Score: 150}.Normalize()
		if r.Score != 100 {
			t.Errorf("expected 100, got %d", r.Score)
		}
	})

	t.Run("clamps negative score", func(t *testing.T) {
		t.Parallel()
		r := ScanResult{Status: StatusSafe, Score: -3}.Normalize()
		if r.Score != 0 {
			t.Errorf("expected 0, got %d", r.Score)
		}
	})

	t.Run("unknown status becomes error", func(t *testing.T) {
		t.Parallel()
		r := ScanResult{Status: "weird", Score: 50}.Normalize()
		if !r.IsError() || r.Score != 0 {
			t.Errorf("expected error/0, got %+v", r)
		}
	})
}

// TestStatuses tests that exactly six statuses are known.
func TestStatuses(t *testing.T) {
	t.Parallel()

	statuses := Statuses()
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
}
