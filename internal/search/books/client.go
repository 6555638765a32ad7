// Package books looks up BOOK candidates through the Google Books volumes API.
//
// The API answers unauthenticated requests at a low quota; an API key raises
// it and is attached when configured.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Volume is one Google Books volume.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo carries the bibliographic fields of a volume.
type VolumeInfo struct {
	Title               string       `json:"title"`
	Subtitle            string       `json:"subtitle"`
	Authors             []string     `json:"authors"`
	Publisher           string       `json:"publisher"`
	PublishedDate       string       `json:"publishedDate"`
	PageCount           int          `json:"pageCount"`
	Language            string       `json:"language"`
	InfoLink            string       `json:"infoLink"`
	ImageLinks          ImageLinks   `json:"imageLinks"`
	IndustryIdentifiers []Identifier `json:"industryIdentifiers"`
}

// ImageLinks holds cover thumbnails.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// Identifier is an ISBN or other industry identifier.
type Identifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Author returns the authors joined for display.
func (v VolumeInfo) Author() string {
	return strings.Join(v.Authors, ", ")
}

// ISBN prefers ISBN-13 over ISBN-10.
func (v VolumeInfo) ISBN() string {
	var fallback string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			fallback = id.Identifier
		}
	}
	return fallback
}

// CoverURL returns the thumbnail upgraded to https.
func (v VolumeInfo) CoverURL() string {
	link := v.ImageLinks.Thumbnail
	if link == "" {
		link = v.ImageLinks.SmallThumbnail
	}
	return strings.Replace(link, "http://", "https://", 1)
}

// Response models the volumes list response.
type Response struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// SearchOptions contains per-call parameters.
type SearchOptions struct {
	Page     int
	PageSize int
	// Language restricts results to an ISO 639-1 code; "ko-KR" is reduced to "ko".
	Language string
}

// Client provides access to the volumes API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Google Books client. apiKey may be empty.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("books base url required")
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchVolumes searches volumes by free text.
func (c *Client) SearchVolumes(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 40 {
		pageSize = 10
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	endpoint, err := url.Parse(c.baseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("parse books url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("printType", "books")
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("startIndex", strconv.Itoa((page-1)*pageSize))
	if lang := languageCode(opts.Language); lang != "" {
		params.Set("langRestrict", lang)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("books search returned %d (latency=%v)", resp.StatusCode, latency)
	}
	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode books response: %w", err)
	}
	return &payload, nil
}

// languageCode reduces a BCP 47 tag to the two-letter code langRestrict takes.
// Unparseable tags are dropped.
func languageCode(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, _ := parsed.Base()
	return base.String()
}
