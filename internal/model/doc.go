// Package model defines the data structures shared by every PhishGuard component.
//
// This package contains the following main types:
//   - ScanResult: The verdict returned by the scan oracle (or synthesized locally)
//   - Counters and Settings: The persisted state read by the background coordinator
//   - IPEntry: A row of the backend's IP reputation table (admin view only)
//   - Domain events: NavigationCompleted, ContextMenuClicked, DownloadCreated, ...
//
// The types live in their own package so that scanclient, background, content,
// frontend and report can all share them without import cycles.
package model
