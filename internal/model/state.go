package model

import "time"

// Counters holds the running scan statistics shown by the popup and the
// stats command. Both values only ever grow.
type Counters struct {
	PagesScanned   int64 `json:"pagesScanned"`
	ThreatsBlocked int64 `json:"threatsBlocked"`
}

// Settings are the user-mutable toggles read before every automatic scan.
type Settings struct {
	// AutoScan enables scans triggered by navigation and page content.
	AutoScan bool `json:"autoScan"`

	// ShowNotifications enables native alerts for phishing navigations.
	ShowNotifications bool `json:"showNotifications"`
}

// DefaultSettings returns the settings written at install time.
func DefaultSettings() Settings {
	return Settings{AutoScan: true, ShowNotifications: true}
}

// IPEntry is one row of the backend's IP reputation table.
// The frontend never edits it except through an unblock request.
type IPEntry struct {
	IP           string  `json:"ip"`
	Attempts     int     `json:"attempts"`
	BlockedUntil float64 `json:"blocked_until"`
	LastSeen     float64 `json:"last_seen,omitempty"`
}

// Blocked reports whether the entry is blocked at the given time.
func (e IPEntry) Blocked(now time.Time) bool {
	return e.BlockedUntil > float64(now.UnixNano())/float64(time.Second)
}

// State returns "blocked" or "active" for display.
func (e IPEntry) State(now time.Time) string {
	if e.Blocked(now) {
		return "blocked"
	}
	return "active"
}

// Email is the content submitted to the email scan endpoint.
// Every field is optional.
type Email struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Empty reports whether the email has nothing worth scanning.
// A subject alone is not enough.
func (e Email) Empty() bool {
	return e.Sender == "" && e.Body == ""
}
