// Package content is the per-page content monitor.
//
// A Page is a snapshot of a loaded document parsed with golang.org/x/net/html:
// its forms (flagged sensitive when they carry a password or payment-card
// field), its links and its images with their declared sizes. A Monitor
// runs the page-level checks against that snapshot:
//
//  1. scan the page URL on start and show the warning banner for
//     high-confidence phishing
//  2. watch sensitive forms and ask for confirmation before a submit on a
//     phishing page
//  3. scan suspicious-looking links on hover and mark flagged ones
//  4. after a settle delay, scan the first few large images once each
//  5. pick up forms inserted after load when the DOM changes
//
// Visual changes are emitted as ui.Patch values through a Renderer.
package content
