package ui

import (
	"errors"
	"testing"

	"github.com/nao1215/phishguard/internal/model"
)

// TestBanner tests when the page banner is produced.
func TestBanner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result model.ScanResult
		want   bool
	}{
		{"phishing above threshold", model.ScanResult{Status: model.StatusPhishing, Score: 70}, true},
		{"phishing below threshold", model.ScanResult{Status: model.StatusPhishing, Score: 69}, false},
		{"malicious high score", model.ScanResult{Status: model.StatusMalicious, Score: 99}, false},
		{"safe", model.ScanResult{Status: model.StatusSafe}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, ok := Banner(tt.result)
			if ok != tt.want {
				t.Fatalf("Banner() ok = %v, want %v", ok, tt.want)
			}
			if ok && (p.Kind != KindBanner || p.Target != BannerID) {
				t.Errorf("unexpected patch %+v", p)
			}
		})
	}

	p, _ := Banner(model.ScanResult{Status: model.StatusPhishing, Score: 90, Details: "fake bank"})
	if p.Text != "Threat Score: 90/100 - fake bank" {
		t.Errorf("unexpected banner text %q", p.Text)
	}
}

// TestLinkMarkAndImageOverlay tests element patches.
func TestLinkMarkAndImageOverlay(t *testing.T) {
	t.Parallel()

	phishing := model.ScanResult{Status: model.StatusPhishing, Score: 10, Details: "ip host"}
	malicious := model.ScanResult{Status: model.StatusMalicious, Score: 80}

	if _, ok := LinkMark("http://1.2.3.4", malicious); ok {
		t.Error("only phishing marks links")
	}
	p, ok := LinkMark("http://1.2.3.4", phishing)
	if !ok || p.Title != "⚠️ PHISHING: ip host" || p.Style["border"] != "2px solid red" {
		t.Errorf("unexpected link mark %+v", p)
	}

	for _, r := range []model.ScanResult{phishing, malicious} {
		if _, ok := ImageOverlay("http://img", r); !ok {
			t.Errorf("expected overlay for %s", r.Status)
		}
	}
	if _, ok := ImageOverlay("http://img", model.ScanResult{Status: model.StatusSuspicious, Score: 99}); ok {
		t.Error("suspicious must not obscure images")
	}
}

// TestTabBadge tests badge glyphs and colors.
func TestTabBadge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status model.Status
		text   string
		color  string
	}{
		{model.StatusPhishing, GlyphWarning, ColorDanger},
		{model.StatusSafe, GlyphCheck, ColorSafe},
		{model.StatusSuspicious, GlyphCheck, ColorSafe},
		{model.StatusError, GlyphCheck, ColorSafe},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			p := TabBadge(3, model.ScanResult{Status: tt.status})
			if p.TabID != 3 || p.Text != tt.text || p.Color != tt.color {
				t.Errorf("unexpected badge %+v", p)
			}
		})
	}

	if b := InstalledBadge(); b.Text != GlyphOn || b.Color != ColorBrand || b.TabID != GlobalTab {
		t.Errorf("unexpected installed badge %+v", b)
	}
}

// TestViewOf tests the frontend result card.
func TestViewOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result model.ScanResult
		want   ResultView
	}{
		{
			name:   "allowed is safe",
			result: model.ScanResult{Status: model.StatusAllowed, Score: 0},
			want:   ResultView{Label: "ALLOWED", Color: ViewColorSafe, Score: "0", Details: "No threats detected."},
		},
		{
			name:   "suspicious is danger",
			result: model.ScanResult{Status: model.StatusSuspicious, Score: 55, Details: "new domain"},
			want:   ResultView{Label: "SUSPICIOUS", Danger: true, Color: ViewColorDanger, Score: "55", Details: "new domain"},
		},
		{
			name:   "error is danger",
			result: model.Failure(""),
			want:   ResultView{Label: "ERROR", Danger: true, Color: ViewColorDanger, Score: "0", Details: "Unable to scan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ViewOf(tt.result); got != tt.want {
				t.Errorf("ViewOf() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if LoadingView().Score != "--" {
		t.Error("loading view should hide the score")
	}
}

// TestDocument tests the in-memory renderer.
func TestDocument(t *testing.T) {
	t.Parallel()

	t.Run("banner is never duplicated and dismissal restores margin", func(t *testing.T) {
		t.Parallel()

		d := NewDocument("8px")
		first, _ := Banner(model.ScanResult{Status: model.StatusPhishing, Score: 90, Details: "a"})
		second, _ := Banner(model.ScanResult{Status: model.StatusPhishing, Score: 95, Details: "b"})

		for _, p := range []Patch{first, first, second} {
			if err := d.Apply(p); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
		}
		got, ok := d.Banner()
		if !ok || got.Text != first.Text {
			t.Errorf("expected the first banner to stay, got %+v", got)
		}
		if d.BodyMargin() != BannerMargin {
			t.Errorf("margin = %q, want %q", d.BodyMargin(), BannerMargin)
		}

		_ = d.Apply(RemoveBanner())
		_ = d.Apply(RemoveBanner())
		if _, ok := d.Banner(); ok {
			t.Error("banner should be gone")
		}
		if d.BodyMargin() != "8px" {
			t.Errorf("margin = %q, want restored 8px", d.BodyMargin())
		}
	})

	t.Run("element patches are idempotent", func(t *testing.T) {
		t.Parallel()

		d := NewDocument("")
		r := model.ScanResult{Status: model.StatusPhishing, Score: 80}
		link, _ := LinkMark("http://a", r)
		img, _ := ImageOverlay("http://i", r)
		for range 2 {
			_ = d.Apply(link)
			_ = d.Apply(img)
		}
		if d.MarkedLinks() != 1 || d.MarkedImages() != 1 {
			t.Errorf("links=%d images=%d, want 1 each", d.MarkedLinks(), d.MarkedImages())
		}
		if e, ok := d.Image("http://i"); !ok || e.Overlay != "⚠️ THREAT DETECTED" {
			t.Errorf("unexpected image element %+v", e)
		}
	})

	t.Run("tab badge falls back to global", func(t *testing.T) {
		t.Parallel()

		d := NewDocument("")
		if _, ok := d.Badge(1); ok {
			t.Error("expected no badge")
		}
		_ = d.Apply(InstalledBadge())
		if b, _ := d.Badge(1); b.Text != GlyphOn {
			t.Errorf("expected global badge, got %+v", b)
		}
		_ = d.Apply(TabBadge(1, model.ScanResult{Status: model.StatusPhishing}))
		if b, _ := d.Badge(1); b.Text != GlyphWarning {
			t.Errorf("expected tab badge, got %+v", b)
		}
	})

	t.Run("unknown patch", func(t *testing.T) {
		t.Parallel()

		if err := NewDocument("").Apply(Patch{Kind: "explode"}); !errors.Is(err, ErrUnknownPatch) {
			t.Errorf("expected ErrUnknownPatch, got %v", err)
		}
	})
}

// TestHeadlineOf tests popup headlines.
func TestHeadlineOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status model.Status
		want   string
	}{
		{model.StatusSafe, "Safe"},
		{model.StatusPhishing, "Phishing Detected!"},
		{model.StatusError, "Connection Error"},
		{model.StatusAllowed, "Suspicious"},
		{model.StatusMalicious, "Suspicious"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			if got := HeadlineOf(model.ScanResult{Status: tt.status}); got.Text != tt.want {
				t.Errorf("HeadlineOf(%s) = %q, want %q", tt.status, got.Text, tt.want)
			}
		})
	}
}
