// Package spotify looks up MUSIC candidates through the Spotify Web API using
// the client-credentials flow.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// Album is one album search hit reduced to the fields candidates need.
type Album struct {
	ID          string
	Name        string
	Artists     []string
	AlbumType   string
	ReleaseDate string
	ImageURL    string
	URL         string
}

// Artist returns the artists joined for display.
func (a Album) Artist() string {
	return strings.Join(a.Artists, ", ")
}

// Page is one page of album results.
type Page struct {
	Albums []Album
	Total  int
	Offset int
	Limit  int
	Next   bool
}

// Client wraps the Spotify Web API client.
type Client struct {
	api    *spotify.Client
	market string
}

// New creates a client authorised with client credentials. Tokens are
// refreshed by the oauth2 transport.
func New(ctx context.Context, clientID, clientSecret, market string) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify client id and secret required")
	}
	creds := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewWithAPI(spotify.New(creds.Client(ctx)), market), nil
}

// NewWithAPI wraps an existing API client.
func NewWithAPI(api *spotify.Client, market string) *Client {
	return &Client{api: api, market: strings.ToUpper(strings.TrimSpace(market))}
}

// SearchAlbums returns one page of albums matching query. page is 1-based.
func (c *Client) SearchAlbums(ctx context.Context, query string, page, limit int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{}, errors.New("query must not be empty")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	opts := []spotify.RequestOption{
		spotify.Limit(limit),
		spotify.Offset((page - 1) * limit),
	}
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	result, err := c.api.Search(ctx, query, spotify.SearchTypeAlbum, opts...)
	if err != nil {
		return Page{}, fmt.Errorf("spotify album search: %w", err)
	}
	out := Page{Offset: (page - 1) * limit, Limit: limit}
	if result == nil || result.Albums == nil {
		return out, nil
	}
	out.Total = int(result.Albums.Total)
	out.Next = result.Albums.Next != ""
	for _, album := range result.Albums.Albums {
		out.Albums = append(out.Albums, convertAlbum(album))
	}
	return out, nil
}

func convertAlbum(album spotify.SimpleAlbum) Album {
	converted := Album{
		ID:          string(album.ID),
		Name:        album.Name,
		AlbumType:   album.AlbumType,
		ReleaseDate: album.ReleaseDate,
		URL:         album.ExternalURLs["spotify"],
	}
	for _, artist := range album.Artists {
		if name := strings.TrimSpace(artist.Name); name != "" {
			converted.Artists = append(converted.Artists, name)
		}
	}
	if len(album.Images) > 0 {
		converted.ImageURL = album.Images[0].URL
	}
	return converted
}
