package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishguard/internal/event"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

// Image and link limits.
const (
	DefaultSettleDelay = 2 * time.Second
	DefaultMaxImages   = 5
	MinImageSize       = 100
	LongLinkLength     = 100
)

var (
	// ErrSubmitCancelled is returned by SubmitForm when the user declined to
	// submit a form on a phishing page.
	ErrSubmitCancelled = errors.New("form submission cancelled")

	// ErrUnknownForm is returned when a form key is not on the page.
	ErrUnknownForm = errors.New("unknown form")
)

// ipv4Pattern matches an IPv4 literal anywhere in a URL.
var ipv4Pattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// Scanner performs scans on behalf of the page.
type Scanner interface {
	ScanURL(ctx context.Context, rawURL string) model.ScanResult
	ScanImage(ctx context.Context, imageURL string) model.ScanResult
}

// SettingsReader provides the current toggles.
type SettingsReader interface {
	Settings(ctx context.Context) (model.Settings, error)
}

// Renderer applies UI patches to the page. ui.Document implements it.
type Renderer interface {
	Apply(p ui.Patch) error
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, message string) bool
}

// Monitor runs the content checks for one loaded page.
type Monitor struct {
	scanner     Scanner
	renderer    Renderer
	settings    SettingsReader
	prompter    Prompter
	logger      *slog.Logger
	settleDelay time.Duration
	maxImages   int

	mu            sync.Mutex
	page          *Page
	monitored     map[string]bool
	scannedImages map[string]bool // by Image.Key
	timer         *time.Timer
	pending       sync.WaitGroup
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithSettings sets the settings source. Without it auto-scan is on.
func WithSettings(s SettingsReader) Option {
	return func(m *Monitor) {
		m.settings = s
	}
}

// WithPrompter sets the confirmation prompter. Without one, submissions on
// phishing pages are cancelled.
func WithPrompter(p Prompter) Option {
	return func(m *Monitor) {
		m.prompter = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = l
	}
}

// WithSettleDelay sets the wait between Start and the image scan.
func WithSettleDelay(d time.Duration) Option {
	return func(m *Monitor) {
		m.settleDelay = d
	}
}

// WithMaxImages sets how many images are considered per page.
func WithMaxImages(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.maxImages = n
		}
	}
}

// NewMonitor creates a monitor for page.
func NewMonitor(page *Page, scanner Scanner, renderer Renderer, opts ...Option) *Monitor {
	m := &Monitor{
		scanner:       scanner,
		renderer:      renderer,
		logger:        slog.New(slog.DiscardHandler),
		settleDelay:   DefaultSettleDelay,
		maxImages:     DefaultMaxImages,
		page:          page,
		monitored:     make(map[string]bool),
		scannedImages: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) currentSettings(ctx context.Context) model.Settings {
	if m.settings == nil {
		return model.DefaultSettings()
	}
	s, err := m.settings.Settings(ctx)
	if err != nil {
		m.logger.Debug("failed to read settings, using defaults", "error", err)
		return model.DefaultSettings()
	}
	return s
}

// Start monitors the page's forms and, when auto-scan is on, scans the page
// URL and schedules the image scan. It returns event.ErrSkipped when
// auto-scan is off.
func (m *Monitor) Start(ctx context.Context) (model.ScanResult, error) {
	m.MonitorForms()

	if !m.currentSettings(ctx).AutoScan {
		return model.ScanResult{}, event.ErrSkipped
	}

	result := m.scanner.ScanURL(ctx, m.pageURL())
	if p, ok := ui.Banner(result); ok {
		m.apply(p)
	}

	m.scheduleImages(ctx)
	return result, nil
}

func (m *Monitor) scheduleImages(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		return
	}
	m.pending.Add(1)
	m.timer = time.AfterFunc(m.settleDelay, func() {
		defer m.pending.Done()
		if _, err := m.ScanImages(ctx); err != nil {
			m.logger.Debug("image scan failed", "error", err)
		}
	})
}

// Wait blocks until a scheduled image scan has finished.
func (m *Monitor) Wait() {
	m.pending.Wait()
}

// Stop cancels a scheduled image scan that has not started yet.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil && m.timer.Stop() {
		m.pending.Done()
	}
}

// DismissBanner removes the warning banner.
func (m *Monitor) DismissBanner() {
	m.apply(ui.RemoveBanner())
}

// MonitorForms marks every form of the current snapshot as monitored and
// returns how many were not monitored before.
func (m *Monitor) MonitorForms() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, f := range m.page.Forms {
		if m.monitored[f.Key] {
			continue
		}
		m.monitored[f.Key] = true
		added++
	}
	return added
}

// Mutated replaces the page snapshot after a DOM change and monitors any
// new forms. Forms already monitored are left alone.
func (m *Monitor) Mutated(page *Page) int {
	m.mu.Lock()
	m.page = page
	m.mu.Unlock()
	return m.MonitorForms()
}

// Monitored reports whether the form with the given key is monitored.
func (m *Monitor) Monitored(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitored[key]
}

// SubmitForm decides whether a form submission may proceed. Unmonitored
// and non-sensitive forms are allowed without a scan (event.ErrSkipped).
// For sensitive forms the page URL is scanned; on phishing the prompter
// must confirm, otherwise ErrSubmitCancelled is returned.
func (m *Monitor) SubmitForm(ctx context.Context, key string) (model.ScanResult, error) {
	m.mu.Lock()
	form, ok := m.page.Form(key)
	monitored := m.monitored[key]
	m.mu.Unlock()

	if !ok {
		return model.ScanResult{}, fmt.Errorf("%w: %s", ErrUnknownForm, key)
	}
	if !monitored || !form.Sensitive() {
		return model.ScanResult{}, event.ErrSkipped
	}

	result := m.scanner.ScanURL(ctx, m.pageURL())
	if !result.IsPhishing() {
		return result, nil
	}

	msg := fmt.Sprintf("⚠️ PhishGuard Warning!\n\n"+
		"This site has been flagged as potentially dangerous (Threat Score: %d/100).\n\n"+
		"%s\n\n"+
		"Are you sure you want to submit this form?", result.Score, result.Details)
	if m.prompter != nil && m.prompter.Confirm(ctx, msg) {
		return result, nil
	}
	return result, ErrSubmitCancelled
}

// ShouldScanLink reports whether a hovered link looks unusual enough to scan:
// longer than 100 characters or containing an IPv4 literal.
func ShouldScanLink(href string) bool {
	return len(href) > LongLinkLength || ipv4Pattern.MatchString(href)
}

// HoverLink scans an unusual link and marks it when flagged as phishing.
func (m *Monitor) HoverLink(ctx context.Context, href string) (model.ScanResult, error) {
	if href == "" || !ShouldScanLink(href) {
		return model.ScanResult{}, event.ErrSkipped
	}
	result := m.scanner.ScanURL(ctx, href)
	if p, ok := ui.LinkMark(href, result); ok {
		m.apply(p)
	}
	return result, nil
}

// imageCandidates returns the first maxImages images large enough to be
// content, in document order.
func (m *Monitor) imageCandidates() []Image {
	var out []Image
	for _, img := range m.page.Images {
		if img.Width > MinImageSize && img.Height > MinImageSize && strings.HasPrefix(img.Src, "http") {
			out = append(out, img)
		}
	}
	if len(out) > m.maxImages {
		out = out[:m.maxImages]
	}
	return out
}

// ScanImages scans the candidate image elements that were not scanned
// before, keyed by Image.Key, and obscures those judged malicious or phishing. It returns how many images
// were submitted.
func (m *Monitor) ScanImages(ctx context.Context) (int, error) {
	m.mu.Lock()
	var todo []Image
	for _, img := range m.imageCandidates() {
		key := img.Key
		if key == "" {
			key = img.Src
		}
		if m.scannedImages[key] {
			continue
		}
		m.scannedImages[key] = true
		todo = append(todo, img)
	}
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxImages)
	for _, img := range todo {
		g.Go(func() error {
			result := m.scanner.ScanImage(gctx, img.Src)
			if p, ok := ui.ImageOverlay(img.Src, result); ok {
				m.apply(p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return len(todo), err
	}
	return len(todo), nil
}

// Submit handles form and link events asynchronously.
func (m *Monitor) Submit(ctx context.Context, ev model.Event) *event.Future {
	switch e := ev.(type) {
	case model.FormSubmitAttempted:
		return event.Go(func() (model.ScanResult, error) { return m.SubmitForm(ctx, e.FormKey) })
	case model.LinkHovered:
		return event.Go(func() (model.ScanResult, error) { return m.HoverLink(ctx, e.Href) })
	default:
		name := "<nil>"
		if ev != nil {
			name = ev.EventName()
		}
		return event.Resolved(model.ScanResult{}, fmt.Errorf("%w: %s", event.ErrUnsupported, name))
	}
}

func (m *Monitor) pageURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page.URL
}

func (m *Monitor) apply(p ui.Patch) {
	if err := m.renderer.Apply(p); err != nil {
		m.logger.Debug("failed to apply patch", "kind", p.Kind, "error", err)
	}
}
