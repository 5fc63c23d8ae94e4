package frontend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

// Default timings.
const (
	DefaultURLDebounce   = 500 * time.Millisecond
	DefaultEmailDebounce = 800 * time.Millisecond
	DefaultToastDuration = 3 * time.Second
	DefaultStatus        = "System Online"
)

// Surface is a tab of the page.
type Surface string

// Surfaces.
const (
	SurfaceURL   Surface = "url"
	SurfaceEmail Surface = "email"
	SurfaceFile  Surface = "file"
	SurfaceAdmin Surface = "admin"
)

// Scanner is the subset of the scan client the router uses.
type Scanner interface {
	ScanURL(ctx context.Context, rawURL string) model.ScanResult
	ScanEmail(ctx context.Context, email model.Email) model.ScanResult
	ScanFile(ctx context.Context, name string, r io.Reader) model.ScanResult
}

// Screen renders the page.
type Screen interface {
	SwitchTab(s Surface)
	ShowResult(v ui.ResultView)
	HideResult()
	SetStatus(text string)
}

// File is a pasted or dropped file.
type File struct {
	Name string
	Data []byte
}

// PasteEvent is a clipboard paste anywhere on the page.
type PasteEvent struct {
	// InTextField is true when focus was already in an input or textarea;
	// the browser's default paste then applies.
	InTextField bool

	Files []File
	Text  string
}

// DropEvent is a drag-and-drop onto the page.
type DropEvent struct {
	Files []File
}

// Router connects input surfaces to scans.
type Router struct {
	scanner       Scanner
	screen        Screen
	logger        *slog.Logger
	urlDebounce   *Debouncer
	emailDebounce *Debouncer
	toastDuration time.Duration

	mu          sync.Mutex
	status      string
	toastSaved  string
	toastTimer  *time.Timer
	toastActive bool
	toastGen    int
	urlValue    string
	email       model.Email
}

// Option configures a Router.
type Option func(*Router)

// WithDebounce sets the URL and email typing delays.
func WithDebounce(urlDelay, emailDelay time.Duration) Option {
	return func(r *Router) {
		r.urlDebounce = NewDebouncer(urlDelay)
		r.emailDebounce = NewDebouncer(emailDelay)
	}
}

// WithToastDuration sets how long a toast replaces the status line.
func WithToastDuration(d time.Duration) Option {
	return func(r *Router) {
		r.toastDuration = d
	}
}

// WithStatus sets the initial status line.
func WithStatus(s string) Option {
	return func(r *Router) {
		r.status = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// NewRouter creates a Router.
func NewRouter(scanner Scanner, screen Screen, opts ...Option) *Router {
	r := &Router{
		scanner:       scanner,
		screen:        screen,
		logger:        slog.New(slog.DiscardHandler),
		urlDebounce:   NewDebouncer(DefaultURLDebounce),
		emailDebounce: NewDebouncer(DefaultEmailDebounce),
		toastDuration: DefaultToastDuration,
		status:        DefaultStatus,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close stops pending debounced scans and toasts.
func (r *Router) Close() {
	r.urlDebounce.Stop()
	r.emailDebounce.Stop()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.toastTimer != nil {
		r.toastTimer.Stop()
	}
}

// URLChanged records typing in the URL field. The scan fires once the field
// has been quiet for the URL delay; an empty field hides the result.
func (r *Router) URLChanged(ctx context.Context, value string) {
	r.mu.Lock()
	r.urlValue = value
	r.mu.Unlock()

	r.urlDebounce.Trigger(func() {
		r.mu.Lock()
		v := strings.TrimSpace(r.urlValue)
		r.mu.Unlock()
		if v == "" {
			r.screen.HideResult()
			return
		}
		r.ScanURL(ctx, v)
	})
}

// EmailChanged records typing in any email field. The scan fires once the
// fields have been quiet for the email delay, and only when sender or body
// is non-empty.
func (r *Router) EmailChanged(ctx context.Context, email model.Email) {
	r.mu.Lock()
	r.email = email
	r.mu.Unlock()

	r.emailDebounce.Trigger(func() {
		r.mu.Lock()
		e := r.email
		r.mu.Unlock()
		trimmed := model.Email{Sender: strings.TrimSpace(e.Sender), Body: strings.TrimSpace(e.Body)}
		if trimmed.Empty() {
			r.screen.HideResult()
			return
		}
		r.ScanEmail(ctx, e)
	})
}

// ScanURL scans immediately and renders the verdict.
func (r *Router) ScanURL(ctx context.Context, rawURL string) model.ScanResult {
	if rawURL == "" {
		return model.ScanResult{}
	}
	r.screen.ShowResult(ui.LoadingView())
	result := r.scanner.ScanURL(ctx, rawURL)
	r.show(result)
	return result
}

// ScanEmail scans immediately unless both sender and body are empty.
func (r *Router) ScanEmail(ctx context.Context, email model.Email) model.ScanResult {
	if email.Empty() {
		return model.ScanResult{}
	}
	r.screen.ShowResult(ui.LoadingView())
	result := r.scanner.ScanEmail(ctx, email)
	r.show(result)
	return result
}

// ScanFile uploads a file and renders the verdict.
func (r *Router) ScanFile(ctx context.Context, f File) model.ScanResult {
	r.screen.ShowResult(ui.LoadingView())
	result := r.scanner.ScanFile(ctx, f.Name, bytes.NewReader(f.Data))
	r.show(result)
	return result
}

func (r *Router) show(result model.ScanResult) {
	if result.IsError() {
		r.logger.Debug("scan failed", "details", result.Details)
	}
	r.screen.ShowResult(ui.ViewOf(result))
}

// Paste handles a paste outside text fields. A file goes to the file
// surface; text is classified. It returns the surface used, or "" when the
// paste was left to the browser.
func (r *Router) Paste(ctx context.Context, ev PasteEvent) Surface {
	if ev.InTextField {
		return ""
	}
	if len(ev.Files) > 0 {
		r.screen.SwitchTab(SurfaceFile)
		r.ScanFile(ctx, ev.Files[0])
		return SurfaceFile
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return ""
	}

	kind, detected := Classify(text)
	if kind == KindURL {
		r.screen.SwitchTab(SurfaceURL)
		r.mu.Lock()
		r.urlValue = text
		r.mu.Unlock()
		r.ScanURL(ctx, text)
		if detected {
			r.Toast("Auto-detected URL: Scanning...")
		}
		return SurfaceURL
	}

	r.screen.SwitchTab(SurfaceEmail)
	r.mu.Lock()
	r.email.Body = text
	email := r.email
	r.mu.Unlock()
	r.ScanEmail(ctx, email)
	if detected {
		r.Toast("Auto-detected Email Content: Scanning...")
	}
	return SurfaceEmail
}

// Drop handles a drop anywhere on the page. Only the first file is scanned.
func (r *Router) Drop(ctx context.Context, ev DropEvent) Surface {
	if len(ev.Files) == 0 {
		return ""
	}
	r.screen.SwitchTab(SurfaceFile)
	r.ScanFile(ctx, ev.Files[0])
	return SurfaceFile
}

// CheckQuery scans the url or q query parameter of the page address. It
// returns the address without its query so a reload does not scan again,
// and whether a scan ran.
func (r *Router) CheckQuery(ctx context.Context, pageURL string) (string, bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", false, fmt.Errorf("invalid page URL: %w", err)
	}

	q := u.Query()
	target := q.Get("url")
	if target == "" {
		target = q.Get("q")
	}
	if target == "" {
		return pageURL, false, nil
	}

	r.logger.Debug("auto-scanning URL from query parameter", "url", target)
	r.screen.SwitchTab(SurfaceURL)
	r.mu.Lock()
	r.urlValue = target
	r.mu.Unlock()
	r.ScanURL(ctx, target)

	u.RawQuery = ""
	u.ForceQuery = false
	return u.String(), true, nil
}

// Toast shows msg on the status line and restores the previous status
// after the toast duration. A toast shown while another is active extends
// it; the status from before the first toast is restored.
func (r *Router) Toast(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.toastTimer != nil {
		r.toastTimer.Stop()
	}
	if !r.toastActive {
		r.toastSaved = r.status
		r.toastActive = true
	}
	r.toastGen++
	gen := r.toastGen
	r.status = "● " + msg
	r.screen.SetStatus(r.status)

	r.toastTimer = time.AfterFunc(r.toastDuration, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.toastGen != gen {
			return
		}
		r.status = r.toastSaved
		r.toastActive = false
		r.screen.SetStatus(r.status)
	})
}

// Status returns the status line.
func (r *Router) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
