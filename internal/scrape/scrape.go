// Package scrape wraps XPath lookups over parsed HTML documents.
//
// All helpers are tolerant: a failed lookup yields the zero value, never an
// error, because every caller treats missing markup as "field absent".
package scrape

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// ParseString parses an HTML document after stripping control characters
// that would otherwise corrupt the tree.
func ParseString(raw string) (*html.Node, error) {
	doc, err := htmlquery.Parse(strings.NewReader(CleanControlChars(raw)))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// CleanControlChars removes ASCII control characters except TAB, LF and CR.
// Scraped pages occasionally embed stray control bytes that break parsing.
func CleanControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// Nodes returns every node matching the XPath expression, or nil.
func Nodes(top *html.Node, expr string) []*html.Node {
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// First returns the first node matching the XPath expression, or nil.
func First(top *html.Node, expr string) *html.Node {
	node, err := htmlquery.Query(top, expr)
	if err != nil {
		return nil
	}
	return node
}

// FirstText returns the trimmed text content of the first match, or "".
// Attribute selections (expressions ending in /@name) work too.
func FirstText(top *html.Node, expr string) string {
	node := First(top, expr)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

// Text returns the trimmed text content of a node.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

// OuterHTML renders a node back to HTML, including the node itself.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.OutputHTML(n, true))
}
