package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/phishguard/internal/media"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/store"
)

// TestNewScanCmd tests the scan command tree.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()
	for _, name := range []string{"url", "email", "file", "image", "page"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("expected subcommand %q", name)
		}
	}
	for _, name := range []string{"timeout", "no-save", "json", "markdown", "output"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q", name)
		}
	}
}

// TestScanURLCmd tests URL scanning end to end.
func TestScanURLCmd(t *testing.T) {
	t.Parallel()

	t.Run("scans and records", func(t *testing.T) {
		t.Parallel()

		api := newBackend(t)
		dir := t.TempDir()

		out, _, err := execute(t, nil, "--data-dir", dir, "--api", api.URL,
			"scan", "url", "http://evil.test/login", "http://ok.test", "--json")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}

		r := decodeReport(t, out)
		if len(r.Scans) != 2 {
			t.Fatalf("expected 2 scans, got %d", len(r.Scans))
		}
		if r.Scans[0].Target != "http://evil.test/login" || r.Scans[0].Result.Status != "phishing" {
			t.Errorf("unexpected first scan %+v", r.Scans[0])
		}
		if r.Scans[1].Result.Status != "safe" {
			t.Errorf("unexpected second scan %+v", r.Scans[1])
		}

		db := openTestStore(t, dir)
		counters, err := db.Counters(context.Background())
		if err != nil {
			t.Fatalf("Counters failed: %v", err)
		}
		if counters.PagesScanned != 2 || counters.ThreatsBlocked != 1 {
			t.Errorf("unexpected counters %+v", counters)
		}
		records, err := db.ListHistory(context.Background(), store.KindURL, 0)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 history records, got %d", len(records))
		}
	})

	t.Run("browser internal pages skip the backend", func(t *testing.T) {
		t.Parallel()

		api := newBackend(t)
		dir := t.TempDir()

		out, _, err := execute(t, nil, "--data-dir", dir, "--api", api.URL,
			"scan", "url", "chrome://settings", "--json")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		r := decodeReport(t, out)
		if len(r.Scans) != 1 || r.Scans[0].Result.Status != "safe" || r.Scans[0].Result.Details != "Browser internal page" {
			t.Errorf("unexpected scans %+v", r.Scans)
		}
		if len(api.seen()) != 0 {
			t.Errorf("expected no backend requests, got %v", api.seen())
		}

		counters, err := openTestStore(t, dir).Counters(context.Background())
		if err != nil {
			t.Fatalf("Counters failed: %v", err)
		}
		if counters.PagesScanned != 0 {
			t.Errorf("internal pages must not be counted, got %+v", counters)
		}
	})

	t.Run("list file and no-save", func(t *testing.T) {
		t.Parallel()

		api := newBackend(t)
		dir := t.TempDir()
		list := filepath.Join(dir, "urls.txt")
		writeFile(t, list, "# inbox links\nhttp://a.test\n\nhttp://evil.test/x\n")

		out, _, err := execute(t, nil, "--data-dir", dir, "--api", api.URL,
			"scan", "url", "--list", list, "--batch", "2", "--no-save")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		for _, want := range []string{"[+] http://a.test (url)", "[!!] http://evil.test/x (url)", "TOTAL: 2 scans, 1 threats"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, store.FileName)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no database with --no-save, got %v", err)
		}
	})

	t.Run("backend failure is an error verdict", func(t *testing.T) {
		t.Parallel()

		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(down.Close)
		dir := t.TempDir()

		out, _, err := execute(t, nil, "--data-dir", dir, "--api", down.URL,
			"scan", "url", "http://a.test", "--json")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		r := decodeReport(t, out)
		if len(r.Scans) != 1 || r.Scans[0].Result.Status != "error" || r.Scans[0].Result.Score != 0 {
			t.Errorf("unexpected scans %+v", r.Scans)
		}
		counters, err := openTestStore(t, dir).Counters(context.Background())
		if err != nil {
			t.Fatalf("Counters failed: %v", err)
		}
		if counters != (model.Counters{}) {
			t.Errorf("error verdicts must not be counted, got %+v", counters)
		}
	})

	t.Run("requires targets", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, nil, "--data-dir", t.TempDir(), "scan", "url")
		if !errors.Is(err, errNoTargets) {
			t.Errorf("expected errNoTargets, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, nil, "--data-dir", t.TempDir(), "scan", "url", "http://a.test", "--json", "--markdown")
		if err == nil || !strings.Contains(err.Error(), "configuration error") {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("writes report file", func(t *testing.T) {
		t.Parallel()

		api := newBackend(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "reports", "scan.md")

		out, _, err := execute(t, nil, "--data-dir", dir, "--api", api.URL,
			"scan", "url", "http://evil.test", "--markdown", "-o", path)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if out != "" {
			t.Errorf("expected nothing on stdout, got %q", out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("report not written: %v", err)
		}
		if !strings.Contains(string(data), "# PhishGuard URL Scan") {
			t.Errorf("unexpected report\n%s", data)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
		}
	})
}

// TestScanEmailCmd tests email scanning.
func TestScanEmailCmd(t *testing.T) {
	t.Parallel()

	t.Run("body from stdin", func(t *testing.T) {
		t.Parallel()

		api := newBackend(t)
		out, _, err := execute(t, strings.NewReader("Please verify your account."),
			"--data-dir", t.TempDir(), "--api", api.URL,
			"scan", "email", "--sender", "security@bank.test", "--subject", "Verify", "--body-file", "-", "--json")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		r := decodeReport(t, out)
		if len(r.Scans) != 1 || r.Scans[0].Target != "security@bank.test" || r.Scans[0].Result.Status != "phishing" {
			t.Errorf("unexpected scans %+v", r.Scans)
		}
	})

	t.Run("empty email", func(t *testing.T) {
		t.Parallel()

		api := newBackend(t)
		_, _, err := execute(t, nil, "--data-dir", t.TempDir(), "--api", api.URL,
			"scan", "email", "--subject", "only a subject")
		if !errors.Is(err, errEmptyEmail) {
			t.Errorf("expected errEmptyEmail, got %v", err)
		}
		if len(api.seen()) != 0 {
			t.Errorf("expected no backend requests, got %v", api.seen())
		}
	})
}

// TestScanFileCmd tests file uploads.
func TestScanFileCmd(t *testing.T) {
	t.Parallel()

	api := newBackend(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.exe")
	data := []byte("MZ fake executable")
	writeFile(t, path, string(data))

	out, _, err := execute(t, nil, "--data-dir", dir, "--api", api.URL,
		"scan", "file", path, "--metadata", "--json")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	r := decodeReport(t, out)
	if len(r.Scans) != 1 || r.Scans[0].Target != "invoice.exe" || r.Scans[0].Result.Status != "malicious" {
		t.Fatalf("unexpected scans %+v", r.Scans)
	}
	if r.Scans[0].Digest != media.Digest(data) {
		t.Errorf("unexpected digest %q", r.Scans[0].Digest)
	}
	if len(r.Media) != 1 || r.Media[0].Name != "invoice.exe" {
		t.Errorf("unexpected media %+v", r.Media)
	}

	db := openTestStore(t, dir)
	records, err := db.ListHistory(context.Background(), store.KindFile, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(records) != 1 || records[0].Digest != media.Digest(data) {
		t.Errorf("unexpected history %+v", records)
	}
	counters, err := db.Counters(context.Background())
	if err != nil {
		t.Fatalf("Counters failed: %v", err)
	}
	if counters != (model.Counters{}) {
		t.Errorf("file scans must not be counted as pages, got %+v", counters)
	}
}

// TestScanImageCmd tests remote image scanning.
func TestScanImageCmd(t *testing.T) {
	t.Parallel()

	api := newBackend(t)
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	}))
	t.Cleanup(images.Close)

	out, _, err := execute(t, nil, "--data-dir", t.TempDir(), "--api", api.URL,
		"scan", "image", images.URL+"/logo.png", images.URL+"/missing.png", "--json")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	r := decodeReport(t, out)
	if len(r.Scans) != 2 {
		t.Fatalf("expected 2 scans, got %+v", r.Scans)
	}
	if r.Scans[0].Result.Status != "safe" || r.Scans[0].Result.Details != "image_scan.png" {
		t.Errorf("expected image forwarded as image_scan.png, got %+v", r.Scans[0])
	}
	if r.Scans[1].Result.Status != "error" {
		t.Errorf("expected error verdict for missing image, got %+v", r.Scans[1])
	}
}

// TestScanPageCmd tests the page checks against a live page.
func TestScanPageCmd(t *testing.T) {
	t.Parallel()

	api := newBackend(t)
	longLink := "http://evil.test/" + strings.Repeat("a", 120)
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/evil-login":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>
<a href="/about">About</a>
<a href="` + longLink + `">Continue</a>
<img src="/banner.png" width="300" height="200">
<img src="/icon.png" width="16" height="16">
</body></html>`))
		case "/banner.png":
			_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nbanner"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(page.Close)

	out, errOut, err := execute(t, nil, "--data-dir", t.TempDir(), "--api", api.URL,
		"scan", "page", page.URL+"/evil-login", "--json")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	r := decodeReport(t, out)
	kinds := make(map[string]int)
	for _, s := range r.Scans {
		kinds[s.Kind]++
	}
	// The test server's 127.0.0.1 address makes every link an IP-literal link.
	if kinds["url"] != 3 || kinds["image"] != 1 {
		t.Errorf("expected page and link URL scans and one image scan, got %+v", r.Scans)
	}
	if !strings.Contains(errOut, "PhishGuard Alert") {
		t.Errorf("expected banner on stderr, got %q", errOut)
	}
	if !strings.Contains(errOut, "Monitoring 0 form(s); 1 link(s) and 0 image(s) marked.") {
		t.Errorf("unexpected summary %q", errOut)
	}
}
