package report

import (
	"fmt"
	"io"
	"strings"
)

const ruleWidth = 70

// TextWriter outputs reports as plain text for terminals.
type TextWriter struct {
	baseWriter

	// verbose adds digests and timestamps to scan entries.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables additional detail.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *TextWriter) Write(r *Report) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(strings.ToUpper(r.Title) + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	if r.Stats != nil {
		w.writeStats(&sb, r.Stats)
	}
	if len(r.Scans) > 0 {
		w.writeScans(&sb, r)
	}
	if len(r.Media) > 0 {
		w.writeMedia(&sb, r)
	}
	if len(r.IPs) > 0 {
		w.writeIPs(&sb, r)
	}

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
}

func (w *TextWriter) writeStats(sb *strings.Builder, s *Stats) {
	section(sb, "STATISTICS")
	fmt.Fprintf(sb, "  Pages Scanned:      %d\n", s.Counters.PagesScanned)
	fmt.Fprintf(sb, "  Threats Blocked:    %d\n", s.Counters.ThreatsBlocked)
	fmt.Fprintf(sb, "  Auto Scan:          %s\n", onOff(s.Settings.AutoScan))
	fmt.Fprintf(sb, "  Show Notifications: %s\n\n", onOff(s.Settings.ShowNotifications))
}

func (w *TextWriter) writeScans(sb *strings.Builder, r *Report) {
	section(sb, "SCAN RESULTS")
	for _, s := range r.Scans {
		indicator := "+"
		switch {
		case s.Result.IsThreat():
			indicator = "!!"
		case s.Result.IsError():
			indicator = "?"
		case !s.Result.IsSafe():
			indicator = "!"
		}
		fmt.Fprintf(sb, "[%s] %s (%s)\n", indicator, s.Target, s.Kind)
		fmt.Fprintf(sb, "    Status:  %s\n", label(string(s.Result.Status)))
		fmt.Fprintf(sb, "    Score:   %d/100\n", s.Result.Score)
		if s.Result.Details != "" {
			fmt.Fprintf(sb, "    Details: %s\n", s.Result.Details)
		}
		if w.verbose {
			if s.Digest != "" {
				fmt.Fprintf(sb, "    Digest:  %s\n", s.Digest)
			}
			if !s.ScannedAt.IsZero() {
				fmt.Fprintf(sb, "    Time:    %s\n", s.ScannedAt.Format("2006-01-02 15:04:05 MST"))
			}
		}
		sb.WriteString("\n")
	}
	if len(r.Scans) > 1 {
		fmt.Fprintf(sb, "  TOTAL: %d scans, %d threats\n\n", len(r.Scans), r.Threats())
	}
}

func (w *TextWriter) writeMedia(sb *strings.Builder, r *Report) {
	section(sb, "FILE METADATA")
	for _, m := range r.Media {
		fmt.Fprintf(sb, "  %s (%s, %d bytes)\n", m.Name, m.ContentType, m.Size)
		fmt.Fprintf(sb, "    SHA3-256: %s\n", m.Digest)
		if len(m.Tags) == 0 {
			sb.WriteString("    No EXIF metadata\n")
		}
		for _, t := range m.Tags {
			fmt.Fprintf(sb, "    %-9s %s: %s\n", label(string(t.Category)), t.Name, t.Value)
		}
		if m.HasLocation() {
			sb.WriteString("    WARNING: image carries GPS coordinates\n")
		}
		sb.WriteString("\n")
	}
}

func (w *TextWriter) writeIPs(sb *strings.Builder, r *Report) {
	section(sb, "IP REPUTATION")
	fmt.Fprintf(sb, "  %-40s %-8s %-8s %s\n", "IP", "ATTEMPTS", "STATE", "BLOCKED UNTIL")
	for _, e := range r.IPs {
		fmt.Fprintf(sb, "  %-40s %-8d %-8s %s\n", e.IP, e.Attempts, ipState(e, r.GeneratedAt), formatEpoch(e.BlockedUntil))
	}
	sb.WriteString("\n")
}
