package tmdb

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

// ImageBaseURL prefixes poster paths returned by the API.
const ImageBaseURL = "https://image.tmdb.org/t/p/w342"

// Result represents a single TMDB search match.
type Result struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	MediaType        string  `json:"media_type"`
	PosterPath       string  `json:"poster_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
}

// DisplayTitle returns the movie title or the series name.
func (r Result) DisplayTitle() string {
	if strings.TrimSpace(r.Title) != "" {
		return r.Title
	}
	return r.Name
}

// Year returns the release (or first air) year, or "" when unknown.
func (r Result) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// PosterURL returns the absolute poster URL, or "" when the result has none.
func (r Result) PosterURL() string {
	if strings.TrimSpace(r.PosterPath) == "" {
		return ""
	}
	return ImageBaseURL + r.PosterPath
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Person is a crew member or series creator.
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits captures the credits payload for a movie or series.
type Credits struct {
	ID   int64    `json:"id"`
	Crew []Person `json:"crew"`
	// CreatedBy is only populated for series (taken from /tv/{id}).
	CreatedBy []Person `json:"created_by"`
}

// Director returns the first credited director, falling back to the first
// series creator.
func (c Credits) Director() string {
	for _, person := range c.Crew {
		if strings.EqualFold(person.Job, "Director") && strings.TrimSpace(person.Name) != "" {
			return person.Name
		}
	}
	for _, person := range c.CreatedBy {
		if strings.TrimSpace(person.Name) != "" {
			return person.Name
		}
	}
	return ""
}

// SearchOptions contains per-call parameters for TMDB searches.
type SearchOptions struct {
	Page     int
	Language string
}

// Searcher defines the TMDB operations used by the search service.
type Searcher interface {
	SearchMulti(ctx context.Context, query string, opts SearchOptions) (*Response, error)
	SearchMovie(ctx context.Context, query string, opts SearchOptions) (*Response, error)
	SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error)
	GetCredits(ctx context.Context, mediaType string, id int64) (*Credits, error)
}

// Client provides access to the TMDB API for searches.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

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

// New creates a TMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
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

// SearchMulti performs a TMDB multi search. People results are dropped so
// callers only see movies and series.
func (c *Client) SearchMulti(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	resp, err := c.search(ctx, "/search/multi", "multi search", query, opts)
	if err != nil {
		return nil, err
	}
	filtered := resp.Results[:0]
	for _, result := range resp.Results {
		if result.MediaType == "person" {
			continue
		}
		filtered = append(filtered, result)
	}
	resp.Results = filtered
	return resp, nil
}

// SearchMovie performs a TMDB movie search.
func (c *Client) SearchMovie(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	resp, err := c.search(ctx, "/search/movie", "movie search", query, opts)
	if err != nil {
		return nil, err
	}
	for i := range resp.Results {
		resp.Results[i].MediaType = "movie"
	}
	return resp, nil
}

// SearchTV performs a TMDB TV search.
func (c *Client) SearchTV(ctx context.Context, query string, opts SearchOptions) (*Response, error) {
	resp, err := c.search(ctx, "/search/tv", "tv search", query, opts)
	if err != nil {
		return nil, err
	}
	for i := range resp.Results {
		resp.Results[i].MediaType = "tv"
	}
	return resp, nil
}

// GetCredits fetches the credits for a movie or series. For series the
// created_by list from the details endpoint is merged in.
func (c *Client) GetCredits(ctx context.Context, mediaType string, id int64) (*Credits, error) {
	if id <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	switch mediaType {
	case "movie":
		var payload Credits
		if err := c.get(ctx, fmt.Sprintf("/movie/%d/credits", id), url.Values{}, "movie credits", &payload); err != nil {
			return nil, err
		}
		return &payload, nil
	case "tv":
		var payload Credits
		if err := c.get(ctx, fmt.Sprintf("/tv/%d/credits", id), url.Values{}, "tv credits", &payload); err != nil {
			return nil, err
		}
		var details struct {
			CreatedBy []Person `json:"created_by"`
		}
		if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), url.Values{}, "tv details", &details); err != nil {
			return nil, err
		}
		payload.CreatedBy = details.CreatedBy
		return &payload, nil
	default:
		return nil, fmt.Errorf("unsupported tmdb media type %q", mediaType)
	}
}

func (c *Client) search(ctx context.Context, path, label, query string, opts SearchOptions) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if opts.Page > 1 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if lang := strings.TrimSpace(opts.Language); lang != "" {
		params.Set("language", lang)
	}
	var payload Response
	if err := c.get(ctx, path, params, label, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, label string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
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
		return &StatusError{Label: label, StatusCode: resp.StatusCode, Latency: latency}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb %s: %w", label, err)
	}
	return nil
}

// StatusError reports a non-200 TMDB response.
type StatusError struct {
	Label      string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s returned %d (latency=%v)", e.Label, e.StatusCode, e.Latency)
}
