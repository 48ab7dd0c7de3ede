// ABOUTME: DuckDuckGo HTML results page extractor with primary and fallback strategies
// ABOUTME: Walks the parsed node tree instead of regex-matching raw markup
package web

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// SearchResult is a single hit extracted from a results page.
type SearchResult struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	DisplayURL string `json:"displayUrl"`
	Snippet    string `json:"snippet"`
}

// maxResultBlocks caps how many result blocks are processed per page.
const maxResultBlocks = 10

var whitespacePattern = regexp.MustCompile(`\s+`)

// ExtractSearchResults parses a DuckDuckGo HTML results page. The primary
// strategy looks for the standard result container blocks; when that yields
// nothing, a looser anchor scan over the same document is attempted, so the
// extractor only returns an empty set when neither strategy matches.
func ExtractSearchResults(htmlContent string) []SearchResult {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	results := extractResultBlocks(doc)
	if len(results) == 0 {
		results = extractLooseAnchors(doc)
	}
	return results
}

// extractResultBlocks implements the primary strategy: one block per
// div carrying both "result" and "results_links" classes.
func extractResultBlocks(doc *html.Node) []SearchResult {
	var results []SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResultBlocks {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			class := attrValue(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				if r, ok := extractBlock(n); ok {
					results = append(results, r)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// extractBlock pulls title, URL, display URL and snippet out of one result
// block. Blocks missing a title or URL are dropped; other fields default
// to the empty string.
func extractBlock(block *html.Node) (SearchResult, bool) {
	var r SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a") && r.URL == "":
				r.URL = resolveRedirect(attrValue(n, "href"))
				r.Title = textContent(n)
			case strings.Contains(class, "result__snippet"):
				r.Snippet = textContent(n)
			case strings.Contains(class, "result__url") && r.DisplayURL == "":
				r.DisplayURL = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(block)

	if r.Title == "" || r.URL == "" {
		return SearchResult{}, false
	}
	if r.DisplayURL == "" {
		r.DisplayURL = hostname(r.URL)
	}
	return r, true
}

// extractLooseAnchors is the fallback strategy: any result__a anchor in the
// document counts as a hit, with the snippet taken from a sibling scan.
func extractLooseAnchors(doc *html.Node) []SearchResult {
	var results []SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResultBlocks {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" &&
			strings.Contains(attrValue(n, "class"), "result__a") {
			rawURL := resolveRedirect(attrValue(n, "href"))
			title := textContent(n)
			if rawURL != "" && title != "" {
				results = append(results, SearchResult{
					Title:      title,
					URL:        rawURL,
					DisplayURL: hostname(rawURL),
					Snippet:    siblingSnippet(n),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// siblingSnippet looks for a result__snippet element near the anchor's
// parent, so the loose strategy can still attach snippets when present.
func siblingSnippet(anchor *html.Node) string {
	parent := anchor.Parent
	if parent == nil {
		return ""
	}
	scope := parent
	if scope.Parent != nil {
		scope = scope.Parent
	}

	var snippet string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if snippet != "" {
			return
		}
		if n.Type == html.ElementNode &&
			strings.Contains(attrValue(n, "class"), "result__snippet") {
			snippet = textContent(n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(scope)
	return snippet
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect into the real
// destination URL, URL-decoded. Non-redirect hrefs pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	idx := strings.Index(href, "uddg=")
	if idx < 0 {
		return href
	}
	encoded := href[idx+len("uddg="):]
	if amp := strings.Index(encoded, "&"); amp >= 0 {
		encoded = encoded[:amp]
	}
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return href
	}
	return decoded
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// textContent returns the concatenated text of a node with entities decoded
// (the parser already decodes them) and whitespace collapsed.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseWhitespace(sb.String())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
