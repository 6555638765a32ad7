// Package rawg looks up GAME candidates through the RAWG video games API.
package rawg

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
)

// Named is a RAWG reference object (genre, developer, publisher).
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PlatformEntry wraps a platform reference.
type PlatformEntry struct {
	Platform Named `json:"platform"`
}

// Game is one RAWG game record. Developers and Publishers are only present on
// the details endpoint.
type Game struct {
	ID              int64           `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Released        string          `json:"released"`
	BackgroundImage string          `json:"background_image"`
	Rating          float64         `json:"rating"`
	Metacritic      int             `json:"metacritic"`
	Platforms       []PlatformEntry `json:"platforms"`
	Genres          []Named         `json:"genres"`
	Developers      []Named         `json:"developers"`
	Publishers      []Named         `json:"publishers"`
}

// PlatformNames lists platform names in response order.
func (g Game) PlatformNames() []string {
	names := make([]string, 0, len(g.Platforms))
	for _, entry := range g.Platforms {
		if entry.Platform.Name != "" {
			names = append(names, entry.Platform.Name)
		}
	}
	return names
}

// Developer returns the first developer, falling back to the first publisher.
func (g Game) Developer() string {
	for _, group := range [][]Named{g.Developers, g.Publishers} {
		for _, entry := range group {
			if strings.TrimSpace(entry.Name) != "" {
				return entry.Name
			}
		}
	}
	return ""
}

// Response models the paginated games list.
type Response struct {
	Count   int    `json:"count"`
	Next    string `json:"next"`
	Results []Game `json:"results"`
}

// Client provides access to the RAWG API.
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

// New creates a RAWG client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("rawg api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("rawg base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchGames searches games by title. page is 1-based.
func (c *Client) SearchGames(ctx context.Context, query string, page, pageSize int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("search", query)
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}
	var payload Response
	if err := c.get(ctx, "/games", params, "games search", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetGame fetches the details record, which carries developers and publishers.
func (c *Client) GetGame(ctx context.Context, id int64) (*Game, error) {
	if id <= 0 {
		return nil, errors.New("rawg id must be positive")
	}
	var payload Game
	if err := c.get(ctx, fmt.Sprintf("/games/%d", id), url.Values{}, "game details", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, label string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse rawg url: %w", err)
	}
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rawg %s returned %d (latency=%v)", label, resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode rawg %s: %w", label, err)
	}
	return nil
}
