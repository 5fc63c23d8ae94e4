// Package ui turns scan verdicts into declarative UI patches.
//
// Nothing in this package touches a real browser. Each function maps a
// model.ScanResult to a Patch describing the change (warning banner, link
// marking, image overlay, toolbar badge) or to a ResultView for the web
// frontend. A renderer applies patches: the native messaging host forwards
// them to the extension, and Document applies them to an in-memory page
// so the decision logic can be tested and printed by the CLI.
package ui
