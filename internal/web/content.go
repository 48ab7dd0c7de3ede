// ABOUTME: Main-content extraction from arbitrary HTML documents
// ABOUTME: Strips noise elements first, then picks the best content region
package web

import (
	"strings"

	"golang.org/x/net/html"
)

// extractionFailed is returned instead of propagating any internal error.
const extractionFailed = "[Content extraction failed]"

// noiseElements are removed before any content region is searched for, so
// navigation chrome can't masquerade as content.
var noiseElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"header":   true,
	"footer":   true,
	"nav":      true,
	"aside":    true,
	"form":     true,
}

// contentMarkers match class or id values that conventionally name the
// main content container.
var contentMarkers = []string{
	"content", "main-content", "post-content", "article-body",
	"entry-content", "post-body", "article-content",
}

// ExtractMainContent reduces an HTML document to the plain text of its most
// probable main-content region. It never panics; any internal failure
// yields a marked failure string.
func ExtractMainContent(htmlContent string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = extractionFailed
		}
	}()

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return extractionFailed
	}

	stripNoise(doc)

	// Priority order: main, article(s), content-class container,
	// content-id container, body. First non-empty text wins.
	if text := textOfAll(findElements(doc, "main")); text != "" {
		return text
	}
	if text := textOfAll(findElements(doc, "article")); text != "" {
		return text
	}
	if text := textOfAll(findByAttr(doc, "class")); text != "" {
		return text
	}
	if text := textOfAll(findByAttr(doc, "id")); text != "" {
		return text
	}
	if text := textOfAll(findElements(doc, "body")); text != "" {
		return text
	}

	// Last resort: the whole cleaned document.
	return textContent(doc)
}

// stripNoise detaches noise elements and comments from the tree in place.
func stripNoise(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.CommentNode ||
			(c.Type == html.ElementNode && noiseElements[c.Data]) {
			n.RemoveChild(c)
			continue
		}
		stripNoise(c)
	}
}

// findElements collects every element with the given tag name. Multiple
// matches (several articles) are all returned so they can be concatenated.
func findElements(doc *html.Node, tag string) []*html.Node {
	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			matches = append(matches, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return matches
}

// findByAttr collects elements whose class or id value names a content
// container.
func findByAttr(doc *html.Node, key string) []*html.Node {
	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isContentMarker(attrValue(n, key)) {
			matches = append(matches, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return matches
}

func isContentMarker(val string) bool {
	if val == "" {
		return false
	}
	val = strings.ToLower(val)
	for _, marker := range contentMarkers {
		for _, token := range strings.Fields(val) {
			if token == marker {
				return true
			}
		}
	}
	return false
}

// textOfAll concatenates the plain text of all matched regions.
func textOfAll(nodes []*html.Node) string {
	if len(nodes) == 0 {
		return ""
	}
	var parts []string
	for _, n := range nodes {
		if text := textContent(n); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
