package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxBodyBytes = 4 << 20

// Page is the text of a fetched URL as handed to the model.
type Page struct {
	URL         string
	Title       string
	Author      string
	Description string
	Text        string
}

// PageFetcher loads a URL and flattens it into a Page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// WebFetcher downloads HTML pages and extracts readable text with goquery.
type WebFetcher struct {
	client    *http.Client
	userAgent string
}

// NewWebFetcher builds a WebFetcher. A nil client gets a default with timeout.
func NewWebFetcher(client *http.Client, userAgent string) *WebFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &WebFetcher{client: client, userAgent: strings.TrimSpace(userAgent)}
}

// Fetch issues a GET request and parses the response body.
func (f *WebFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, fmt.Errorf("fetch %s: http %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return ParseHTML(body, resp.Request.URL.String())
}

// ParseHTML extracts the title, description, author, and body text from an
// HTML document. Script, style, and navigation chrome are dropped.
func ParseHTML(html []byte, pageURL string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	page := Page{URL: pageURL}
	page.Title = normSpace(firstNonEmpty(
		metaContent(doc, "property", "og:title"),
		doc.Find("title").First().Text(),
		doc.Find("h1").First().Text(),
	))
	page.Description = normSpace(firstNonEmpty(
		metaContent(doc, "property", "og:description"),
		metaContent(doc, "name", "description"),
	))
	page.Author = normSpace(firstNonEmpty(
		metaContent(doc, "name", "author"),
		metaContent(doc, "property", "article:author"),
	))

	body := doc.Find("body")
	body.Find("script, style, noscript, nav, header, footer, iframe, svg").Remove()
	var parts []string
	body.Find("h1, h2, h3, h4, p, li, td, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if text := normSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		parts = append(parts, normSpace(body.Text()))
	}
	page.Text = strings.Join(parts, "\n")
	return page, nil
}

func metaContent(doc *goquery.Document, attr, value string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, value)).First().Attr("content")
	return content
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// validateURL accepts absolute http(s) URLs only.
func validateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return parsed, nil
}
