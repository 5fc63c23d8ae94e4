package background

import (
	"context"

	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

// Scanner is the subset of the scan client the coordinator uses.
type Scanner interface {
	ScanURL(ctx context.Context, rawURL string) model.ScanResult
	ScanImage(ctx context.Context, imageURL string) model.ScanResult
}

// State is the persisted settings and counters store.
type State interface {
	Install(ctx context.Context) error
	Settings(ctx context.Context) (model.Settings, error)
	Counters(ctx context.Context) (model.Counters, error)
}

// Badge sets toolbar badges.
type Badge interface {
	SetBadge(ctx context.Context, p ui.Patch) error
}

// Notification priorities.
const (
	PriorityNormal = 1
	PriorityHigh   = 2
)

// Notification is a native desktop alert.
type Notification struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Notifier raises notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Downloads controls browser downloads.
type Downloads interface {
	Cancel(ctx context.Context, id int) error
}

type nopBadge struct{}

func (nopBadge) SetBadge(context.Context, ui.Patch) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) error { return nil }

type nopDownloads struct{}

func (nopDownloads) Cancel(context.Context, int) error { return nil }
