package content

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/phishguard/internal/event"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

const testPage = `<!DOCTYPE html>
<html><head><title>Login</title></head>
<body>
  <form id="login" action="/session" method="post">
    <input name="user"><input type="password" name="pw">
  </form>
  <form action="/search"><input name="q"></form>
  <form action="/pay" method="post"><input name="credit_card_number"></form>
  <a href="/about">About</a>
  <a href="http://192.168.10.5/verify">Verify</a>
  <a href="#">Top</a>
  <img src="/hero.jpg" width="640" height="480">
  <img src="/icon.png" width="16" height="16">
  <img src="data:image/png;base64,AAAA" width="300" height="300">
  <img src="/b1.jpg" width="200" height="200">
  <img src="/b2.jpg" width="200px" height="200">
  <img src="/b3.jpg" width="200" height="200">
  <img src="/b4.jpg" width="200" height="200">
  <img src="/b5.jpg" width="200" height="200">
</body></html>`

func parseTestPage(t *testing.T, pageURL, doc string) *Page {
	t.Helper()
	page, err := ParsePage(pageURL, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	return page
}

// fakeScanner returns verdicts by URL substring and counts calls.
type fakeScanner struct {
	mu       sync.Mutex
	verdicts map[string]model.ScanResult
	urls     []string
	images   []string
}

func (s *fakeScanner) lookup(u string) model.ScanResult {
	for k, v := range s.verdicts {
		if strings.Contains(u, k) {
			return v
		}
	}
	return model.ScanResult{Status: model.StatusSafe}
}

func (s *fakeScanner) ScanURL(_ context.Context, u string) model.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, u)
	return s.lookup(u)
}

func (s *fakeScanner) ScanImage(_ context.Context, u string) model.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, u)
	return s.lookup(u)
}

func (s *fakeScanner) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls), len(s.images)
}

type staticSettings model.Settings

func (s staticSettings) Settings(context.Context) (model.Settings, error) {
	return model.Settings(s), nil
}

type answer bool

func (a answer) Confirm(context.Context, string) bool { return bool(a) }

// TestParsePage tests page extraction.
func TestParsePage(t *testing.T) {
	t.Parallel()

	page := parseTestPage(t, "https://bank.test/login", testPage)

	if len(page.Forms) != 3 {
		t.Fatalf("expected 3 forms, got %d", len(page.Forms))
	}
	login, ok := page.Form("login")
	if !ok || !login.Sensitive() || login.Method != "POST" || login.Action != "https://bank.test/session" {
		t.Errorf("unexpected login form %+v", login)
	}
	if page.Forms[1].Sensitive() {
		t.Error("search form should not be sensitive")
	}
	if !page.Forms[2].Sensitive() {
		t.Error("card form should be sensitive")
	}
	if page.Forms[1].Key != "GET https://bank.test/search [q]#1" {
		t.Errorf("unexpected generated key %q", page.Forms[1].Key)
	}

	if len(page.Links) != 2 || page.Links[0] != "https://bank.test/about" {
		t.Errorf("unexpected links %v", page.Links)
	}
	if len(page.Images) != 8 || page.Images[0].Width != 640 || page.Images[4].Width != 200 {
		t.Errorf("unexpected images %+v", page.Images)
	}
}

// TestStart tests the page scan and banner.
func TestStart(t *testing.T) {
	t.Parallel()

	t.Run("high-score phishing shows one banner", func(t *testing.T) {
		t.Parallel()

		scanner := &fakeScanner{verdicts: map[string]model.ScanResult{
			"bank.test": {Status: model.StatusPhishing, Score: 92, Details: "clone"},
		}}
		doc := ui.NewDocument("")
		m := NewMonitor(parseTestPage(t, "https://bank.test/login", testPage), scanner, doc,
			WithSettleDelay(time.Hour))
		t.Cleanup(m.Stop)

		for range 2 {
			if _, err := m.Start(context.Background()); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
		}
		if _, ok := doc.Banner(); !ok {
			t.Fatal("expected banner")
		}
		if doc.BodyMargin() != ui.BannerMargin {
			t.Errorf("unexpected margin %q", doc.BodyMargin())
		}

		m.DismissBanner()
		if _, ok := doc.Banner(); ok || doc.BodyMargin() != "" {
			t.Error("dismissal should leave no banner and restore margin")
		}
	})

	t.Run("low-score phishing shows no banner", func(t *testing.T) {
		t.Parallel()

		scanner := &fakeScanner{verdicts: map[string]model.ScanResult{
			"bank.test": {Status: model.StatusPhishing, Score: 40},
		}}
		doc := ui.NewDocument("")
		m := NewMonitor(parseTestPage(t, "https://bank.test/", testPage), scanner, doc, WithSettleDelay(time.Hour))
		t.Cleanup(m.Stop)

		_, _ = m.Start(context.Background())
		if _, ok := doc.Banner(); ok {
			t.Error("unexpected banner")
		}
	})

	t.Run("auto-scan off still monitors forms", func(t *testing.T) {
		t.Parallel()

		scanner := &fakeScanner{}
		m := NewMonitor(parseTestPage(t, "https://bank.test/", testPage), scanner, ui.NewDocument(""),
			WithSettings(staticSettings{}))

		if _, err := m.Start(context.Background()); !errors.Is(err, event.ErrSkipped) {
			t.Errorf("expected ErrSkipped, got %v", err)
		}
		if urls, _ := scanner.counts(); urls != 0 {
			t.Error("expected no page scan")
		}
		if !m.Monitored("login") {
			t.Error("forms should be monitored regardless of auto-scan")
		}
	})

	t.Run("images are scanned after the settle delay", func(t *testing.T) {
		t.Parallel()

		scanner := &fakeScanner{}
		m := NewMonitor(parseTestPage(t, "https://bank.test/", testPage), scanner, ui.NewDocument(""),
			WithSettleDelay(time.Millisecond))

		_, _ = m.Start(context.Background())
		m.Wait()
		if _, images := scanner.counts(); images != DefaultMaxImages {
			t.Errorf("expected %d image scans, got %d", DefaultMaxImages, images)
		}
	})
}

// TestSubmitForm tests the form submission gate.
func TestSubmitForm(t *testing.T) {
	t.Parallel()

	phishing := map[string]model.ScanResult{"bank.test": {Status: model.StatusPhishing, Score: 80}}

	tests := []struct {
		name     string
		verdicts map[string]model.ScanResult
		form     string
		prompter Prompter
		wantErr  error
		scans    int
	}{
		{"non-sensitive form skips scan", phishing, "GET https://bank.test/search [q]#1", answer(false), event.ErrSkipped, 0},
		{"safe page allows", nil, "login", answer(false), nil, 1},
		{"phishing confirmed allows", phishing, "login", answer(true), nil, 1},
		{"phishing declined cancels", phishing, "login", answer(false), ErrSubmitCancelled, 1},
		{"phishing without prompter cancels", phishing, "login", nil, ErrSubmitCancelled, 1},
		{"unknown form", phishing, "nope", answer(true), ErrUnknownForm, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scanner := &fakeScanner{verdicts: tt.verdicts}
			opts := []Option{}
			if tt.prompter != nil {
				opts = append(opts, WithPrompter(tt.prompter))
			}
			m := NewMonitor(parseTestPage(t, "https://bank.test/", testPage), scanner, ui.NewDocument(""), opts...)
			m.MonitorForms()

			_, err := m.SubmitForm(context.Background(), tt.form)
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if urls, _ := scanner.counts(); urls != tt.scans {
				t.Errorf("scans = %d, want %d", urls, tt.scans)
			}
		})
	}
}

// TestMutated tests that only new forms are picked up.
func TestMutated(t *testing.T) {
	t.Parallel()

	scanner := &fakeScanner{}
	m := NewMonitor(parseTestPage(t, "https://bank.test/", testPage), scanner, ui.NewDocument(""))

	if n := m.MonitorForms(); n != 3 {
		t.Errorf("first MonitorForms() = %d, want 3", n)
	}
	if n := m.MonitorForms(); n != 0 {
		t.Errorf("second MonitorForms() = %d, want 0", n)
	}

	updated := strings.Replace(testPage, "</body>",
		`<form id="otp"><input type="password" name="otp"></form></body>`, 1)
	if n := m.Mutated(parseTestPage(t, "https://bank.test/", updated)); n != 1 {
		t.Errorf("Mutated() = %d, want 1", n)
	}
	if !m.Monitored("otp") {
		t.Error("inserted form should be monitored")
	}
	if urls, _ := scanner.counts(); urls != 0 {
		t.Error("monitoring must not scan")
	}
}

// TestHoverLink tests link scanning heuristics.
func TestHoverLink(t *testing.T) {
	t.Parallel()

	long := "https://example.test/" + strings.Repeat("a", 90)

	tests := []struct {
		name   string
		href   string
		scan   bool
		marked bool
	}{
		{"short ordinary link", "https://example.test/about", false, false},
		{"ip literal", "http://10.0.0.1/login", true, true},
		{"long link", long, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scanner := &fakeScanner{verdicts: map[string]model.ScanResult{
				"http": {Status: model.StatusPhishing, Score: 50, Details: "odd"},
			}}
			doc := ui.NewDocument("")
			m := NewMonitor(&Page{URL: "https://example.test/"}, scanner, doc)

			_, err := m.HoverLink(context.Background(), tt.href)
			if !tt.scan {
				if !errors.Is(err, event.ErrSkipped) {
					t.Errorf("expected ErrSkipped, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HoverLink failed: %v", err)
			}
			el, ok := doc.Link(tt.href)
			if ok != tt.marked || el.Title != "⚠️ PHISHING: odd" {
				t.Errorf("unexpected link element %+v (marked=%v)", el, ok)
			}
		})
	}
}

// TestScanImages tests image selection, dedupe and overlays.
func TestScanImages(t *testing.T) {
	t.Parallel()

	scanner := &fakeScanner{verdicts: map[string]model.ScanResult{
		"hero.jpg": {Status: model.StatusMalicious, Score: 90},
		"b1.jpg":   {Status: model.StatusSuspicious, Score: 90},
	}}
	doc := ui.NewDocument("")
	m := NewMonitor(parseTestPage(t, "https://bank.test/", testPage), scanner, doc)

	n, err := m.ScanImages(context.Background())
	if err != nil || n != 5 {
		t.Fatalf("ScanImages() = %d, %v; want 5", n, err)
	}
	if _, ok := doc.Image("https://bank.test/hero.jpg"); !ok {
		t.Error("malicious image should have an overlay")
	}
	if _, ok := doc.Image("https://bank.test/b1.jpg"); ok {
		t.Error("suspicious image must not be obscured")
	}
	if doc.MarkedImages() != 1 {
		t.Errorf("expected 1 overlay, got %d", doc.MarkedImages())
	}

	if n, _ := m.ScanImages(context.Background()); n != 0 {
		t.Errorf("second ScanImages() = %d, want 0", n)
	}
	_, images := scanner.counts()
	if images != 5 {
		t.Errorf("expected 5 image scans in total, got %d", images)
	}
}

// TestScanImagesPerElement tests that repeated sources are separate
// elements, each scanned once.
func TestScanImagesPerElement(t *testing.T) {
	t.Parallel()

	page := parseTestPage(t, "https://shop.test/", `<html><body>
<img src="/ad.png" width="300" height="250">
<img src="/ad.png" width="300" height="250">
<img id="hero" src="/ad.png" width="300" height="250">
</body></html>`)

	wantKeys := []string{"https://shop.test/ad.png", "https://shop.test/ad.png#1", "hero"}
	for i, img := range page.Images {
		if img.Key != wantKeys[i] {
			t.Errorf("image %d key = %q, want %q", i, img.Key, wantKeys[i])
		}
	}

	scanner := &fakeScanner{}
	m := NewMonitor(page, scanner, ui.NewDocument(""))
	if n, err := m.ScanImages(context.Background()); err != nil || n != 3 {
		t.Fatalf("ScanImages() = %d, %v; want 3", n, err)
	}
	if n, _ := m.ScanImages(context.Background()); n != 0 {
		t.Errorf("second ScanImages() = %d, want 0", n)
	}
	if _, images := scanner.counts(); images != 3 {
		t.Errorf("expected 3 image scans, got %d", images)
	}
}

// TestMonitorSubmit tests asynchronous events.
func TestMonitorSubmit(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&Page{URL: "https://x.test/"}, &fakeScanner{}, ui.NewDocument(""))
	ctx := context.Background()

	if _, err := m.Submit(ctx, model.LinkHovered{Href: "http://1.2.3.4/"}).Wait(ctx); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if _, err := m.Submit(ctx, model.DownloadCreated{}).Wait(ctx); !errors.Is(err, event.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
