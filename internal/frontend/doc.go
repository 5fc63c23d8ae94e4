// Package frontend routes input from the PhishGuard web page to the scan
// backend.
//
// The page has three scan surfaces (URL, email, file) and two capture paths
// that need no interaction: a global paste and a global drop. Typing is
// debounced, pasted text is classified as URL-like or email-like, and a
// url or q query parameter starts a scan on load. AdminView renders the
// backend's IP reputation table.
//
// Rendering goes through the Screen interface so the routing logic runs
// without a browser.
package frontend
