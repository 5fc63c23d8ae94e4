package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/phishguard/internal/event"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

// TabState is the scan state of one browser tab.
type TabState string

// Tab states.
const (
	TabUnscanned TabState = "unscanned"
	TabScanning  TabState = "scanning"
	TabSafe      TabState = "safe"
	TabFlagged   TabState = "flagged"
)

// Coordinator reacts to browser events.
type Coordinator struct {
	scanner   Scanner
	state     State
	badge     Badge
	notifier  Notifier
	downloads Downloads
	logger    *slog.Logger

	mu   sync.Mutex
	tabs map[int]TabState
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBadge sets the badge sink.
func WithBadge(b Badge) Option {
	return func(c *Coordinator) {
		c.badge = b
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithDownloads sets the download controller.
func WithDownloads(d Downloads) Option {
	return func(c *Coordinator) {
		c.downloads = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// New creates a Coordinator. Side effects are discarded unless sinks are
// configured with options.
func New(scanner Scanner, state State, opts ...Option) *Coordinator {
	c := &Coordinator{
		scanner:   scanner,
		state:     state,
		badge:     nopBadge{},
		notifier:  nopNotifier{},
		downloads: nopDownloads{},
		logger:    slog.New(slog.DiscardHandler),
		tabs:      make(map[int]TabState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Install resets settings and counters and shows the "ON" badge.
func (c *Coordinator) Install(ctx context.Context) error {
	if err := c.state.Install(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := c.badge.SetBadge(ctx, ui.InstalledBadge()); err != nil {
		return fmt.Errorf("failed to set badge: %w", err)
	}
	c.logger.Info("PhishGuard installed")
	return nil
}

// TabState returns the state of a tab. Unknown tabs are unscanned.
func (c *Coordinator) TabState(tabID int) TabState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.tabs[tabID]; ok {
		return s
	}
	return TabUnscanned
}

// ForgetTab drops the state of a closed tab.
func (c *Coordinator) ForgetTab(tabID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tabs, tabID)
}

func (c *Coordinator) setTab(tabID int, s TabState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tabs[tabID] = s
}

// HandleNavigation scans a tab whose page finished loading. It returns
// event.ErrSkipped when auto-scan is disabled. A phishing verdict flags
// the tab and, when notifications are enabled, raises one alert per scan.
// Any other verdict marks the tab safe.
func (c *Coordinator) HandleNavigation(ctx context.Context, ev model.NavigationCompleted) (model.ScanResult, error) {
	if ev.URL == "" {
		return model.ScanResult{}, event.ErrSkipped
	}

	settings, err := c.state.Settings(ctx)
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if !settings.AutoScan {
		return model.ScanResult{}, event.ErrSkipped
	}

	c.setTab(ev.TabID, TabScanning)
	result := c.scanner.ScanURL(ctx, ev.URL)
	if result.IsError() {
		c.logger.Debug("navigation scan failed", "tab", ev.TabID, "details", result.Details)
	}

	if result.IsPhishing() {
		c.setTab(ev.TabID, TabFlagged)
		c.setBadge(ctx, ui.TabBadge(ev.TabID, result))
		if settings.ShowNotifications {
			c.notify(ctx, Notification{
				Title:    "🚨 PhishGuard Alert",
				Message:  fmt.Sprintf("Phishing detected!\nThreat Score: %d/100\n%s", result.Score, result.Details),
				Priority: PriorityHigh,
			})
		}
		return result, nil
	}

	c.setTab(ev.TabID, TabSafe)
	c.setBadge(ctx, ui.TabBadge(ev.TabID, result))
	return result, nil
}

// HandleContextMenu scans a right-clicked link and always notifies.
func (c *Coordinator) HandleContextMenu(ctx context.Context, ev model.ContextMenuClicked) (model.ScanResult, error) {
	if ev.MenuItemID != model.ScanLinkMenuID || ev.LinkURL == "" {
		return model.ScanResult{}, event.ErrSkipped
	}

	result := c.scanner.ScanURL(ctx, ev.LinkURL)

	n := Notification{
		Title:    "✅ Safe Link",
		Message:  fmt.Sprintf("URL: %s\nScore: %d/100\n%s", ev.LinkURL, result.Score, result.Details),
		Priority: PriorityNormal,
	}
	if result.IsPhishing() {
		n.Title = "🚨 Phishing Link!"
		n.Priority = PriorityHigh
	}
	c.notify(ctx, n)
	return result, nil
}

// HandleDownload scans a download's source and cancels it when the verdict
// is phishing or the score is at least 70. The blocking notification is
// raised only after the cancel succeeded.
func (c *Coordinator) HandleDownload(ctx context.Context, ev model.DownloadCreated) (model.ScanResult, error) {
	if ev.URL == "" {
		return model.ScanResult{}, event.ErrSkipped
	}

	result := c.scanner.ScanURL(ctx, ev.URL)
	if !result.BlocksDownload() {
		return result, nil
	}

	if err := c.downloads.Cancel(ctx, ev.ID); err != nil {
		c.logger.Debug("failed to cancel download", "id", ev.ID, "error", err)
		return result, fmt.Errorf("failed to cancel download %d: %w", ev.ID, err)
	}
	c.logger.Info("download blocked", "id", ev.ID, "url", ev.URL, "status", result.Status, "score", result.Score)

	c.notify(ctx, Notification{
		Title:    "🚨 Download Blocked!",
		Message:  fmt.Sprintf("PhishGuard blocked a suspicious download from: %s\nReason: %s", ev.URL, result.Details),
		Priority: PriorityHigh,
	})
	return result, nil
}

// Submit handles an event asynchronously. Events the coordinator does not
// own resolve immediately with event.ErrUnsupported.
func (c *Coordinator) Submit(ctx context.Context, ev model.Event) *event.Future {
	switch e := ev.(type) {
	case model.NavigationCompleted:
		return event.Go(func() (model.ScanResult, error) { return c.HandleNavigation(ctx, e) })
	case model.ContextMenuClicked:
		return event.Go(func() (model.ScanResult, error) { return c.HandleContextMenu(ctx, e) })
	case model.DownloadCreated:
		return event.Go(func() (model.ScanResult, error) { return c.HandleDownload(ctx, e) })
	default:
		return event.Resolved(model.ScanResult{}, fmt.Errorf("%w: %s", event.ErrUnsupported, eventName(ev)))
	}
}

func eventName(ev model.Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.EventName()
}

func (c *Coordinator) setBadge(ctx context.Context, p ui.Patch) {
	if err := c.badge.SetBadge(ctx, p); err != nil {
		c.logger.Debug("failed to set badge", "tab", p.TabID, "error", err)
	}
}

func (c *Coordinator) notify(ctx context.Context, n Notification) {
	if err := c.notifier.Notify(ctx, n); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Debug("failed to notify", "title", n.Title, "error", err)
	}
}
