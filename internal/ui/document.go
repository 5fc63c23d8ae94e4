package ui

import (
	"errors"
	"fmt"
	"maps"
	"sync"
)

// ErrUnknownPatch is returned by Apply for patches with an unknown kind.
var ErrUnknownPatch = errors.New("unknown patch kind")

// Badge is the toolbar badge state of one tab.
type Badge struct {
	Text  string
	Color string
}

// Element is the rendered state of a marked link or image.
type Element struct {
	Title   string
	Overlay string
	Style   map[string]string
}

// Document is an in-memory page and toolbar. Applying a patch twice leaves
// the same state as applying it once.
type Document struct {
	mu          sync.Mutex
	bodyMargin  string
	savedMargin string
	banner      *Patch
	links       map[string]Element
	images      map[string]Element
	badges      map[int]Badge
}

// NewDocument creates an empty document whose body has the given top margin.
func NewDocument(bodyMargin string) *Document {
	return &Document{
		bodyMargin: bodyMargin,
		links:      make(map[string]Element),
		images:     make(map[string]Element),
		badges:     make(map[int]Badge),
	}
}

// Apply renders p.
func (d *Document) Apply(p Patch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch p.Kind {
	case KindBanner:
		if d.banner != nil {
			return nil
		}
		d.banner = &p
		d.savedMargin = d.bodyMargin
		d.bodyMargin = BannerMargin
	case KindRemoveBanner:
		if d.banner == nil {
			return nil
		}
		d.banner = nil
		d.bodyMargin = d.savedMargin
	case KindMarkLink:
		d.links[p.Target] = Element{Title: p.Title, Style: maps.Clone(p.Style)}
	case KindImageOverlay:
		d.images[p.Target] = Element{Overlay: p.Text, Style: maps.Clone(p.Style)}
	case KindBadge:
		d.badges[p.TabID] = Badge{Text: p.Text, Color: p.Color}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPatch, p.Kind)
	}
	return nil
}

// Banner returns the banner patch currently shown.
func (d *Document) Banner() (Patch, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.banner == nil {
		return Patch{}, false
	}
	return *d.banner, true
}

// BodyMargin returns the body's current top margin.
func (d *Document) BodyMargin() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bodyMargin
}

// Link returns the marking of the link with the given href.
func (d *Document) Link(href string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.links[href]
	return e, ok
}

// Image returns the overlay of the image with the given src.
func (d *Document) Image(src string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.images[src]
	return e, ok
}

// Badge returns the badge of a tab, falling back to the global badge.
func (d *Document) Badge(tabID int) (Badge, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.badges[tabID]; ok {
		return b, true
	}
	b, ok := d.badges[GlobalTab]
	return b, ok
}

// MarkedLinks returns the number of marked links.
func (d *Document) MarkedLinks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.links)
}

// MarkedImages returns the number of images with an overlay.
func (d *Document) MarkedImages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.images)
}
