package ui

import (
	"fmt"

	"github.com/nao1215/phishguard/internal/model"
)

// Kind identifies what a Patch changes.
type Kind string

// Patch kinds.
const (
	KindBanner       Kind = "banner"
	KindRemoveBanner Kind = "removeBanner"
	KindMarkLink     Kind = "markLink"
	KindImageOverlay Kind = "imageOverlay"
	KindBadge        Kind = "badge"
)

// Element ids, colors and glyphs shared with the extension.
const (
	BannerID     = "phishguard-warning"
	BannerMargin = "80px"

	ColorBrand  = "#667eea"
	ColorDanger = "#ef4444"
	ColorSafe   = "#22c55e"

	GlyphOn      = "ON"
	GlyphWarning = "⚠️"
	GlyphCheck   = "✓"
)

// GlobalTab is the tab id of the badge shown on every tab.
const GlobalTab = 0

// Patch is one declarative UI change.
type Patch struct {
	// Kind is the change to make.
	Kind Kind `json:"kind"`

	// Target identifies the element: a link href or an image src.
	// Banner patches always target BannerID.
	Target string `json:"target,omitempty"`

	// TabID is the tab a badge patch applies to; GlobalTab means all tabs.
	TabID int `json:"tabId,omitempty"`

	// Title is a heading or tooltip.
	Title string `json:"title,omitempty"`

	// Text is the visible text: banner message, overlay label or badge glyph.
	Text string `json:"text,omitempty"`

	// Color is the badge background color.
	Color string `json:"color,omitempty"`

	// Style holds CSS properties set on the target element.
	Style map[string]string `json:"style,omitempty"`
}

// Banner returns the full-width warning banner for a page verdict.
// ok is false unless the verdict is phishing with a score of at least 70.
func Banner(r model.ScanResult) (p Patch, ok bool) {
	if !r.WarrantsBanner() {
		return Patch{}, false
	}
	return Patch{
		Kind:   KindBanner,
		Target: BannerID,
		Title:  "PhishGuard Alert: Potential Phishing Site Detected!",
		Text:   fmt.Sprintf("Threat Score: %d/100 - %s", r.Score, r.Details),
	}, true
}

// RemoveBanner returns the patch applied when the user dismisses the banner.
func RemoveBanner() Patch {
	return Patch{Kind: KindRemoveBanner, Target: BannerID}
}

// LinkMark returns the marking for a hovered link judged phishing.
func LinkMark(href string, r model.ScanResult) (Patch, bool) {
	if !r.IsPhishing() {
		return Patch{}, false
	}
	return Patch{
		Kind:   KindMarkLink,
		Target: href,
		Title:  "⚠️ PHISHING: " + r.Details,
		Style: map[string]string{
			"border":           "2px solid red",
			"background-color": "rgba(255,0,0,0.1)",
		},
	}, true
}

// ImageOverlay returns the obscuring overlay for an image judged malicious
// or phishing.
func ImageOverlay(src string, r model.ScanResult) (Patch, bool) {
	if !r.IsThreat() {
		return Patch{}, false
	}
	return Patch{
		Kind:   KindImageOverlay,
		Target: src,
		Text:   "⚠️ THREAT DETECTED",
		Style: map[string]string{
			"border": "5px solid red",
			"filter": "blur(5px)",
		},
	}, true
}

// InstalledBadge is the global badge set when the extension is installed.
func InstalledBadge() Patch {
	return Patch{Kind: KindBadge, TabID: GlobalTab, Text: GlyphOn, Color: ColorBrand}
}

// TabBadge returns the badge for a tab after its navigation scan.
// Only phishing shows the warning; every other verdict, including error,
// shows the check.
func TabBadge(tabID int, r model.ScanResult) Patch {
	if r.IsPhishing() {
		return Patch{Kind: KindBadge, TabID: tabID, Text: GlyphWarning, Color: ColorDanger}
	}
	return Patch{Kind: KindBadge, TabID: tabID, Text: GlyphCheck, Color: ColorSafe}
}
