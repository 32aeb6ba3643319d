// Package pagetext pulls readable text out of an HTML document the same way
// the sidebar's content script does: prefer <article>, then <main>, then the
// page's paragraphs, headings and list items.
package pagetext

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benvon/focusdock/internal/models"
)

// DefaultTitle is used when a document has no usable <title>
const DefaultTitle = "Current Page"

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Head:     true,
}

var fallbackBlocks = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Li: true,
}

// Extract parses an HTML document and returns its text, title and favicon.
// pageURL may be empty; when set it is used to resolve the favicon.
func Extract(r io.Reader, pageURL string) (models.PageContent, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return models.PageContent{}, fmt.Errorf("parse html: %w", err)
	}

	var text string
	switch {
	case first(doc, atom.Article) != nil:
		text = innerText(first(doc, atom.Article))
	case first(doc, atom.Main) != nil:
		text = innerText(first(doc, atom.Main))
	default:
		var parts []string
		walk(doc, func(n *html.Node) bool {
			if n.Type == html.ElementNode && fallbackBlocks[n.DataAtom] {
				parts = append(parts, innerText(n))
				return false
			}
			return true
		})
		text = strings.Join(parts, "\n")
	}

	title := DefaultTitle
	if t := first(doc, atom.Title); t != nil {
		if s := strings.TrimSpace(textOf(t)); s != "" {
			title = s
		}
	}

	return models.PageContent{
		Text:    clean(text),
		Title:   title,
		URL:     pageURL,
		Favicon: favicon(doc, pageURL),
	}, nil
}

// clean collapses whitespace the way the summarizer expects its input
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func first(doc *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return false
		}
		return true
	})
	return found
}

// innerText approximates the rendered text of n. Block boundaries become
// newlines so adjacent blocks do not run together.
func innerText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if skipped[c.DataAtom] {
				return false
			}
			if c.DataAtom == atom.Br || fallbackBlocks[c.DataAtom] || c.DataAtom == atom.Div {
				b.WriteByte('\n')
			}
		}
		return true
	})
	return b.String()
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func favicon(doc *html.Node, pageURL string) string {
	var href string
	walk(doc, func(n *html.Node) bool {
		if href != "" {
			return false
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Link {
			for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
				if rel == "icon" {
					href = attr(n, "href")
					break
				}
			}
		}
		return true
	})

	base, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		return href
	}
	if href == "" {
		if base.Scheme == "" || base.Host == "" {
			return ""
		}
		return base.Scheme + "://" + base.Host + "/favicon.ico"
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
