package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/phishguard/internal/media"
	"github.com/nao1215/phishguard/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Format selects a Writer.
type Format string

// Report formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Scan is one verdict in a report.
type Scan struct {
	// Kind is the scan surface: url, email, file or image.
	Kind string `json:"kind"`

	// Target is the scanned URL, email sender or file name.
	Target string `json:"target"`

	// Result is the verdict.
	Result model.ScanResult `json:"result"`

	// Digest is the SHA3-256 of file and image content, if known.
	Digest string `json:"digest,omitempty"`

	// ScannedAt is when the verdict was produced.
	ScannedAt time.Time `json:"scannedAt"`
}

// Stats is the popup view: counters and settings.
type Stats struct {
	Counters model.Counters `json:"counters"`
	Settings model.Settings `json:"settings"`
}

// Report is everything a writer can render. Empty sections are skipped.
type Report struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Scans       []Scan          `json:"scans,omitempty"`
	Media       []media.Summary `json:"media,omitempty"`
	IPs         []model.IPEntry `json:"ips,omitempty"`
	Stats       *Stats          `json:"stats,omitempty"`
}

// New creates an empty report stamped with the current time.
func New(title string) *Report {
	return &Report{Title: title, GeneratedAt: time.Now()}
}

// StatusCounts returns the number of scans per status.
func (r *Report) StatusCounts() map[model.Status]int {
	counts := make(map[model.Status]int)
	for _, s := range r.Scans {
		counts[s.Result.Status]++
	}
	return counts
}

// Threats returns the number of scans whose verdict is phishing or malicious.
func (r *Report) Threats() int {
	n := 0
	for _, s := range r.Scans {
		if s.Result.IsThreat() {
			n++
		}
	}
	return n
}

// Writer renders a report.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(r *Report) (int, error)
}

// NewWriter returns the writer for format.
func NewWriter(output io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// label returns a display form of a status or category name.
func label(s string) string {
	return cases.Title(language.English).String(s)
}

// onOff renders a setting toggle.
func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// ipState returns the display state of an entry at generation time.
func ipState(e model.IPEntry, at time.Time) string {
	return label(e.State(at))
}

// formatEpoch renders epoch seconds, or "-" for zero.
func formatEpoch(sec float64) string {
	if sec <= 0 {
		return "-"
	}
	return time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
}

// truncate shortens s to maxLen bytes with an ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
