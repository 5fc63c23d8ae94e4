// Package background is the extension's background coordinator.
//
// It owns the per-tab scan state machine
//
//	unscanned -> scanning -> safe | flagged
//
// and reacts to navigation, context-menu and download events. It also
// answers scanUrl, scanImage and getStats requests from the content
// monitor and the popup. Side effects go through the Badge, Notifier and
// Downloads interfaces; the native messaging host implements them by
// sending commands to the browser.
//
// Scan failures are never shown to the user from here. They are logged at
// debug level and the tab is treated as not flagged.
package background
