// Package nativemsg implements a Chrome native messaging host.
//
// The browser extension starts the phishguard binary with "host" and talks
// to it over stdin and stdout. Each message is a 32-bit length in native
// (little-endian on every supported platform) byte order followed by that
// many bytes of UTF-8 JSON. Messages to the browser are limited to 1 MiB.
//
// Inbound messages are either requests ({"id","action",...}) answered by
// the background coordinator or browser events ({"id","event","payload"}).
// Each one is handled in its own goroutine and its reply carries the
// request id. The host also implements the coordinator's Badge, Notifier
// and Downloads ports by sending setBadge, notify and cancelDownload
// commands back to the extension. Writes are serialized.
package nativemsg
