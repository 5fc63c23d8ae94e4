package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/phishguard/internal/store"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// backend is a fake phishing-detection API. URLs and senders containing
// "evil" or "bank" are phishing; .exe uploads are malicious.
type backend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	blocked  bool
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{blocked: true}
	mux := http.NewServeMux()
	mux.HandleFunc("/scan/url", func(w http.ResponseWriter, r *http.Request) {
		b.log(r)
		var body struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.URL, "evil") {
			writeVerdict(w, "phishing", 95, "Known phishing kit")
			return
		}
		writeVerdict(w, "safe", 2, "")
	})
	mux.HandleFunc("/scan/email", func(w http.ResponseWriter, r *http.Request) {
		b.log(r)
		var body struct {
			Sender string `json:"sender"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.Sender, "bank") {
			writeVerdict(w, "phishing", 88, "Spoofed sender")
			return
		}
		writeVerdict(w, "safe", 5, "")
	})
	mux.HandleFunc("/scan/file", func(w http.ResponseWriter, r *http.Request) {
		b.log(r)
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.HasSuffix(header.Filename, ".exe") {
			writeVerdict(w, "malicious", 90, "Trojan dropper")
			return
		}
		writeVerdict(w, "safe", 1, header.Filename)
	})
	mux.HandleFunc("/admin/ips", func(w http.ResponseWriter, r *http.Request) {
		b.log(r)
		b.mu.Lock()
		until := "0"
		if b.blocked {
			until = "4102444800"
		}
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"203.0.113.7":{"attempts":9,"blocked_until":` + until + `}}`))
	})
	mux.HandleFunc("/admin/unblock/", func(w http.ResponseWriter, r *http.Request) {
		b.log(r)
		b.mu.Lock()
		b.blocked = false
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func (b *backend) log(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func writeVerdict(w http.ResponseWriter, status string, score int, details string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "score": score, "details": details})
}

// jsonReport is the decoded shape of a JSON report.
type jsonReport struct {
	Title string `json:"title"`
	Scans []struct {
		Kind   string `json:"kind"`
		Target string `json:"target"`
		Digest string `json:"digest"`
		Result struct {
			Status  string `json:"status"`
			Score   int    `json:"score"`
			Details string `json:"details"`
		} `json:"result"`
	} `json:"scans"`
	Media []struct {
		Name        string `json:"name"`
		ContentType string `json:"contentType"`
		Digest      string `json:"digest"`
	} `json:"media"`
	IPs []struct {
		IP       string `json:"ip"`
		Attempts int    `json:"attempts"`
	} `json:"ips"`
	Stats *struct {
		Counters struct {
			PagesScanned   int64 `json:"pagesScanned"`
			ThreatsBlocked int64 `json:"threatsBlocked"`
		} `json:"counters"`
		Settings struct {
			AutoScan          bool `json:"autoScan"`
			ShowNotifications bool `json:"showNotifications"`
		} `json:"settings"`
	} `json:"stats"`
}

func decodeReport(t *testing.T, out string) jsonReport {
	t.Helper()
	var r jsonReport
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, out)
	}
	return r
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// openTestStore opens the database a command wrote to.
func openTestStore(t *testing.T, dir string) *store.DB {
	t.Helper()
	db, err := store.Open(dir, store.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
