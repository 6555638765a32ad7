package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mediashelf/internal/config"
	"mediashelf/internal/search/books"
	"mediashelf/internal/search/rawg"
	"mediashelf/internal/search/spotify"
	"mediashelf/internal/search/tmdb"
	"mediashelf/internal/services"
)

// NewFromConfig registers every configured provider in the order tmdb,
// spotify, books, rawg.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "search", "init", "config is nil", nil)
	}
	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	var providers []Provider
	for _, name := range cfg.ConfiguredProviders() {
		provider, err := buildProvider(ctx, cfg, name, httpClient, logger)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "search", "init "+name, "provider setup failed", err)
		}
		providers = append(providers, provider)
	}
	return New(providers,
		WithLogger(logger),
		WithCacheTTL(time.Duration(cfg.Search.CacheTTLSeconds)*time.Second),
		WithRequestsPerSecond(cfg.Search.RequestsPerSecond),
		WithPageSize(cfg.Search.PageSize),
	), nil
}

func buildProvider(ctx context.Context, cfg *config.Config, name string, httpClient *http.Client, logger *slog.Logger) (Provider, error) {
	switch name {
	case config.ProviderTMDB:
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		return NewTMDBProvider(client, logger), nil
	case config.ProviderSpotify:
		client, err := spotify.New(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.Market)
		if err != nil {
			return nil, err
		}
		return NewSpotifyProvider(client), nil
	case config.ProviderBooks:
		client, err := books.New(cfg.Books.APIKey, cfg.Books.BaseURL, books.WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		return NewBooksProvider(client), nil
	case config.ProviderRAWG:
		client, err := rawg.New(cfg.RAWG.APIKey, cfg.RAWG.BaseURL, rawg.WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		return NewRAWGProvider(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
