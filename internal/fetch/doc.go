// Package fetch downloads remote resources (page HTML and images) on behalf
// of the content monitor and the image scan path.
//
// Fetching a suspected phishing resource reveals the caller's address to
// whoever runs it. A Fetcher can therefore be direct, routed through an
// existing SOCKS5 proxy (golang.org/x/net/proxy), or routed through an
// embedded Tor daemon started with tornago.
package fetch
