// Package scraper turns a web page into plain text for the tutor's knowledge base.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dlh/dlh/utils/logging"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	defaultMaxChars = 20000
	maxPageBytes    = 5 << 20
	userAgent       = "Mozilla/5.0 (compatible; DLHKnowledgeImporter/1.0)"
)

var ErrNoText = errors.New("page has no readable text")

type Options struct {
	MaxChars int
	Timeout  time.Duration
}

type Scraper struct {
	client *http.Client
	opts   Options
}

func NewScraper(client *http.Client, opts Options) *Scraper {
	if opts.MaxChars <= 0 {
		opts.MaxChars = defaultMaxChars
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Scraper{client: client, opts: opts}
}

// ScrapePage fetches targetURL and returns its readable text, capped at MaxChars runes.
func (s *Scraper) ScrapePage(ctx context.Context, targetURL string) (string, error) {
	defer logging.LogDuration(ctx, "scrape_page")()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		logging.ErrorLogger.Error("scrape fetch failed", zap.String("url", targetURL), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", targetURL, resp.StatusCode)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoText
	}
	if r := []rune(text); len(r) > s.opts.MaxChars {
		text = string(r[:s.opts.MaxChars])
	}
	return text, nil
}

// ExtractText parses HTML and returns the visible text of the page body with
// whitespace collapsed. Block elements become line breaks.
func ExtractText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, template, svg, iframe, nav, footer, header, form").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			return
		case html.ElementNode:
			if isBlock(n.Data) {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	flush()

	return strings.Join(lines, "\n"), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "main", "aside", "li", "ul", "ol", "br",
		"h1", "h2", "h3", "h4", "h5", "h6", "table", "tr", "blockquote", "pre":
		return true
	}
	return false
}
