// Package report renders scan results for people and tools.
//
// Three formats are available:
//   - TextWriter: plain text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables for sharing
//
// A Report can carry scan verdicts, file metadata summaries, the backend's
// IP table and the local counters; each writer renders only the sections
// that are present.
package report
