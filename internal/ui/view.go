package ui

import (
	"strconv"
	"strings"

	"github.com/nao1215/phishguard/internal/model"
)

// Frontend result card colors.
const (
	ViewColorDanger = "#ef4444"
	ViewColorSafe   = "#10b981"
)

// ResultView is what the frontend result card shows.
type ResultView struct {
	// Label is the badge text: the upper-cased status, or "Scanning...".
	Label string `json:"label"`

	// Danger selects the red card style.
	Danger bool `json:"danger"`

	// Color is the accent color of the card.
	Color string `json:"color"`

	// Score is the score text, "--" while loading.
	Score string `json:"score"`

	// Details is the explanation line.
	Details string `json:"details"`
}

// LoadingView is shown while a scan is in flight.
func LoadingView() ResultView {
	return ResultView{
		Label:   "Scanning...",
		Color:   ViewColorSafe,
		Score:   "--",
		Details: "Analyzing data...",
	}
}

// ViewOf renders a verdict. Only safe and allowed use the safe style.
func ViewOf(r model.ScanResult) ResultView {
	v := ResultView{
		Label:   strings.ToUpper(string(r.Status)),
		Danger:  !r.IsSafe(),
		Color:   ViewColorSafe,
		Score:   strconv.Itoa(r.Score),
		Details: r.Details,
	}
	if v.Danger {
		v.Color = ViewColorDanger
	}
	if v.Details == "" {
		v.Details = "No threats detected."
	}
	return v
}

// Headline is the one-line verdict used by the popup and the CLI.
type Headline struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// HeadlineOf returns the popup headline for a verdict. Everything that is
// neither safe nor phishing reads as suspicious.
func HeadlineOf(r model.ScanResult) Headline {
	switch r.Status {
	case model.StatusError:
		return Headline{Icon: "⚠️", Text: "Connection Error"}
	case model.StatusSafe:
		return Headline{Icon: "✅", Text: "Safe"}
	case model.StatusPhishing:
		return Headline{Icon: "🚨", Text: "Phishing Detected!"}
	default:
		return Headline{Icon: "⚠️", Text: "Suspicious"}
	}
}
