package content

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Field is one input of a form.
type Field struct {
	Name string
	Type string
}

// Form is a form element of the page.
type Form struct {
	// Key identifies the form across DOM snapshots: its id attribute, or a
	// signature of method, action and field names with an occurrence suffix.
	Key string

	// Action is the resolved form action URL.
	Action string

	// Method is the upper-cased HTTP method, GET when absent.
	Method string

	// Fields lists the input elements.
	Fields []Field
}

// Sensitive reports whether the form collects a password or card data.
func (f Form) Sensitive() bool {
	for _, field := range f.Fields {
		if strings.EqualFold(field.Type, "password") {
			return true
		}
		name := strings.ToLower(field.Name)
		if strings.Contains(name, "card") || strings.Contains(name, "credit") {
			return true
		}
	}
	return false
}

// Image is an img element with its declared size.
type Image struct {
	// Key identifies the element across DOM snapshots: its id attribute, or
	// its source with an occurrence suffix when the source repeats.
	Key string

	Src    string
	Width  int
	Height int
}

// Page is a parsed document snapshot.
type Page struct {
	URL    string
	Forms  []Form
	Links  []string
	Images []Image
}

// Form returns the form with the given key.
func (p *Page) Form(key string) (Form, bool) {
	for _, f := range p.Forms {
		if f.Key == key {
			return f, true
		}
	}
	return Form{}, false
}

// ParsePage parses an HTML document loaded from pageURL.
func ParsePage(pageURL string, r io.Reader) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{URL: pageURL}
	signatures := make(map[string]int)
	sources := make(map[string]int)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := resolve(base, getAttr(n, "href")); href != "" {
					page.Links = append(page.Links, href)
				}
			case "img":
				if src := resolve(base, getAttr(n, "src")); src != "" {
					page.Images = append(page.Images, Image{
						Key:    imageKey(n, src, sources),
						Src:    src,
						Width:  dimension(getAttr(n, "width")),
						Height: dimension(getAttr(n, "height")),
					})
				}
			case "form":
				page.Forms = append(page.Forms, parseForm(base, n, signatures))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return page, nil
}

func imageKey(n *html.Node, src string, sources map[string]int) string {
	if id := getAttr(n, "id"); id != "" {
		return id
	}
	seen := sources[src]
	sources[src]++
	if seen == 0 {
		return src
	}
	return src + "#" + strconv.Itoa(seen)
}

func parseForm(base *url.URL, n *html.Node, signatures map[string]int) Form {
	form := Form{
		Action: resolve(base, getAttr(n, "action")),
		Method: strings.ToUpper(getAttr(n, "method")),
	}
	if form.Method == "" {
		form.Method = "GET"
	}
	collectFields(n, &form)

	if id := getAttr(n, "id"); id != "" {
		form.Key = id
		return form
	}

	names := make([]string, 0, len(form.Fields))
	for _, f := range form.Fields {
		names = append(names, f.Name)
	}
	sig := form.Method + " " + form.Action + " [" + strings.Join(names, ",") + "]"
	signatures[sig]++
	form.Key = sig + "#" + strconv.Itoa(signatures[sig])
	return form
}

// collectFields gathers input elements below n.
func collectFields(n *html.Node, form *Form) {
	if n.Type == html.ElementNode && n.Data == "input" {
		typ := strings.ToLower(getAttr(n, "type"))
		if typ == "" {
			typ = "text"
		}
		form.Fields = append(form.Fields, Field{Name: getAttr(n, "name"), Type: typ})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFields(c, form)
	}
}

// resolve returns href as an absolute URL, or "" for empty and
// script-like references.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// dimension parses a width or height attribute such as "120" or "120px".
func dimension(v string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
