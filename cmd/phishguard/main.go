// Package main provides the entry point for the PhishGuard CLI.
//
// PhishGuard sends URLs, email content, files and remote images to a
// phishing-detection backend and keeps counters, settings and scan history
// in a local SQLite database. The same binary runs as the browser
// extension's native messaging host.
//
// Usage:
//
//	phishguard scan url <url>
//	phishguard scan url --list <file>
//	phishguard host
//
// See --help for all available options.
package main

// main is the entry point for PhishGuard.
func main() {
	Execute()
}
