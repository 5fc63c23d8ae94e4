// Package store provides SQLite-based persistence for PhishGuard.
//
// The database holds the state the browser extension keeps in local
// storage: the autoScan and showNotifications toggles and the pagesScanned
// and threatsBlocked counters. It also keeps a scan history so the CLI can
// show what was checked and when.
//
// SQLite (via modernc.org/sqlite) keeps everything in one CGO-free file
// under the XDG data directory. The native messaging host and the CLI may
// open the same file at once; WAL mode and single-statement counter updates
// keep both consistent.
package store
