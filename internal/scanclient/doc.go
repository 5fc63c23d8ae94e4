// Package scanclient talks to the PhishGuard detection backend.
//
// The backend is an opaque oracle: it receives a URL, an email or a file
// and answers with {status, score, details}. This package never judges
// anything itself. Its job is to turn every possible outcome of a request
// into exactly one model.ScanResult:
//
//   - browser-internal URLs are answered locally as safe without a request
//   - network failures, non-2xx responses and malformed bodies become an
//     error verdict; the underlying ScanError is logged, never returned
//   - completed URL scans are reported to an optional Recorder that
//     maintains the pagesScanned and threatsBlocked counters; email, file
//     and image scans leave them alone
//
// Requests are never retried. The only deadline is the HTTP client timeout.
//
// The admin endpoints (ListIPs, UnblockIP) are different: they return
// ordinary Go errors because their callers render failures themselves.
package scanclient
