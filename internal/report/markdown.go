package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/phishguard/internal/model"
)

// MarkdownWriter outputs reports as Markdown built with nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report.
func (w *MarkdownWriter) Write(r *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(r.Title)
	md.PlainText("")
	md.PlainTextf("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	md.PlainText("")

	if r.Stats != nil {
		w.writeStats(md, r.Stats)
	}
	if len(r.Scans) > 0 {
		w.writeScans(md, r)
	}
	if len(r.Media) > 0 {
		w.writeMedia(md, r)
	}
	if len(r.IPs) > 0 {
		w.writeIPs(md, r)
	}

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeStats(md *markdown.Markdown, s *Stats) {
	md.H2("Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Pages Scanned", strconv.FormatInt(s.Counters.PagesScanned, 10)},
			{"Threats Blocked", strconv.FormatInt(s.Counters.ThreatsBlocked, 10)},
			{"Auto Scan", onOff(s.Settings.AutoScan)},
			{"Show Notifications", onOff(s.Settings.ShowNotifications)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeScans(md *markdown.Markdown, r *Report) {
	md.H2("Scan Results")
	md.PlainText("")

	rows := make([][]string, len(r.Scans))
	for i, s := range r.Scans {
		details := s.Result.Details
		if details == "" {
			details = "-"
		}
		rows[i] = []string{
			statusIcon(s.Result) + " " + label(string(s.Result.Status)),
			"`" + truncate(s.Target, 60) + "`",
			s.Kind,
			strconv.Itoa(s.Result.Score),
			truncate(details, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Target", "Kind", "Score", "Details"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(r.Scans) > 1 {
		w.writePieChart(md, r)
	}

	if n := r.Threats(); n > 0 {
		md.Cautionf("%d of %d scanned target(s) were judged dangerous.", n, len(r.Scans))
	} else {
		md.Tip("No threats detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, r *Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Verdict Distribution"),
		piechart.WithShowData(true),
	)
	counts := r.StatusCounts()
	for _, status := range model.Statuses() {
		if n := counts[status]; n > 0 {
			chart.LabelAndIntValue(label(string(status)), uint64(n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeMedia(md *markdown.Markdown, r *Report) {
	md.H2("File Metadata")
	md.PlainText("")
	for _, m := range r.Media {
		md.H3(m.Name)
		md.PlainText("")
		rows := [][]string{
			{"Content Type", m.ContentType},
			{"Size", strconv.Itoa(m.Size) + " bytes"},
			{"SHA3-256", "`" + m.Digest + "`"},
		}
		for _, t := range m.Tags {
			rows = append(rows, []string{label(string(t.Category)) + ": " + t.Name, t.Value})
		}
		md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
		md.PlainText("")
		if m.HasLocation() {
			md.Warningf("%s carries GPS coordinates.", m.Name)
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeIPs(md *markdown.Markdown, r *Report) {
	md.H2("IP Reputation")
	md.PlainText("")
	rows := make([][]string, len(r.IPs))
	for i, e := range r.IPs {
		rows[i] = []string{"`" + e.IP + "`", strconv.Itoa(e.Attempts), ipState(e, r.GeneratedAt), formatEpoch(e.BlockedUntil)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"IP", "Attempts", "State", "Blocked Until"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusIcon returns the glyph shown next to a verdict.
func statusIcon(r model.ScanResult) string {
	switch {
	case r.IsThreat():
		return "🔴"
	case r.IsError():
		return "⚪"
	case r.IsSafe():
		return "🟢"
	default:
		return "🟡"
	}
}
