package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// NoTitle is used when a page has no (or an empty) <title> element.
const NoTitle = "No title found"

// NoiseSelector matches elements removed from the body before text extraction.
const NoiseSelector = "script, style, img, input"

// Page is the parsed form of a fetched URL. ParsePage builds it and the
// Fetcher fills in the response details; it is not modified afterwards.
type Page struct {
	URL        string
	// BaseURL is where the page was actually served from, after redirects.
	// Relative links on the page resolve against it.
	BaseURL    string
	Title      string
	BodyText   string
	Links      []string
	StatusCode int
}

// Contents renders the page the way it is embedded in aggregated portfolio content.
func (p *Page) Contents() string {
	return fmt.Sprintf("Webpage Title:\n%s\nWebpage Contents:\n%s\n\n", p.Title, p.BodyText)
}

// ParsePage extracts the title, visible body text and raw link targets from
// htmlContent. Links are returned in document order exactly as written in the
// href attribute; they are not resolved against sourceURL.
func ParsePage(sourceURL string, htmlContent string) (*Page, error) {
	// With scripting disabled <noscript> content is parsed as elements, so
	// the noise selector also reaches the styles and images inside it.
	root, err := html.ParseWithOptions(strings.NewReader(htmlContent), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	page := &Page{
		URL:     sourceURL,
		BaseURL: sourceURL,
		Title:   NoTitle,
		Links:   make([]string, 0),
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		page.Title = title
	}

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			page.Links = append(page.Links, href)
		}
	})

	if body := doc.Find("body").First(); body.Length() > 0 {
		body.Find(NoiseSelector).Remove()
		page.BodyText = visibleText(body)
	}

	return page, nil
}

// visibleText joins every non-blank text node under sel with newlines, each
// trimmed of surrounding whitespace.
func visibleText(sel *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}
