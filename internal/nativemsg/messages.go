package nativemsg

import (
	"encoding/json"

	"github.com/nao1215/phishguard/internal/background"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

// Host-level actions and events that do not go to Dispatch.
const (
	ActionInstall   = "install"
	EventTabRemoved = "tabRemoved"
)

// Outbound message types.
const (
	TypeReply          = "reply"
	TypeSetBadge       = "setBadge"
	TypeNotify         = "notify"
	TypeCancelDownload = "cancelDownload"
)

// Inbound is a message from the extension.
type Inbound struct {
	// ID correlates the reply. Messages without an id get no reply.
	ID string `json:"id,omitempty"`

	// Action selects a request: scanUrl, scanImage, getStats or install.
	Action string `json:"action,omitempty"`

	// URL and ImageURL are the request targets.
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`

	// Event is the name of a browser event; Payload holds its fields.
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is a message to the extension.
type Outbound struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	Result  *model.ScanResult `json:"result,omitempty"`
	Stats   *model.Counters   `json:"stats,omitempty"`
	Error   string            `json:"error,omitempty"`
	Skipped bool              `json:"skipped,omitempty"`

	Badge        *ui.Patch                `json:"badge,omitempty"`
	Notification *background.Notification `json:"notification,omitempty"`
	DownloadID   *int                     `json:"downloadId,omitempty"`
}

type tabRemoved struct {
	TabID int `json:"tabId"`
}
