package model

// Event is a browser occurrence that may lead to a scan.
type Event interface {
	// EventName returns the wire name of the event.
	EventName() string
}

// Event wire names.
const (
	EventNavigationCompleted = "navigationCompleted"
	EventContextMenuClicked  = "contextMenuClicked"
	EventDownloadCreated     = "downloadCreated"
	EventFormSubmitAttempted = "formSubmitAttempted"
	EventLinkHovered         = "linkHovered"
)

// ScanLinkMenuID is the id of the "Scan with PhishGuard" context-menu entry.
const ScanLinkMenuID = "scanLink"

// NavigationCompleted fires when a tab finishes loading a URL.
type NavigationCompleted struct {
	TabID int    `json:"tabId"`
	URL   string `json:"url"`
}

// EventName implements Event.
func (NavigationCompleted) EventName() string { return EventNavigationCompleted }

// ContextMenuClicked fires when the user picks a context-menu entry on a link.
type ContextMenuClicked struct {
	MenuItemID string `json:"menuItemId"`
	LinkURL    string `json:"linkUrl"`
}

// EventName implements Event.
func (ContextMenuClicked) EventName() string { return EventContextMenuClicked }

// DownloadCreated fires when the browser starts a download.
type DownloadCreated struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// EventName implements Event.
func (DownloadCreated) EventName() string { return EventDownloadCreated }

// FormSubmitAttempted fires when a monitored form is about to be submitted.
// FormKey identifies the form within the page (its id attribute, or a
// signature of its action and fields).
type FormSubmitAttempted struct {
	FormKey string `json:"formKey"`
}

// EventName implements Event.
func (FormSubmitAttempted) EventName() string { return EventFormSubmitAttempted }

// LinkHovered fires when the pointer enters a hyperlink.
type LinkHovered struct {
	Href string `json:"href"`
}

// EventName implements Event.
func (LinkHovered) EventName() string { return EventLinkHovered }
