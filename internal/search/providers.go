package search

import (
	"context"
	"log/slog"
	"strconv"

	"mediashelf/internal/config"
	"mediashelf/internal/content"
	"mediashelf/internal/logging"
	"mediashelf/internal/search/books"
	"mediashelf/internal/search/rawg"
	"mediashelf/internal/search/spotify"
	"mediashelf/internal/search/tmdb"
)

// creatorLookups caps the per-page detail calls made to fill in creators that
// list endpoints omit (TMDB directors, RAWG developers).
const creatorLookups = 5

// TMDBProvider serves VIDEO through TMDB multi search.
type TMDBProvider struct {
	client tmdb.Searcher
	logger *slog.Logger
}

// NewTMDBProvider wraps a TMDB client.
func NewTMDBProvider(client tmdb.Searcher, logger *slog.Logger) *TMDBProvider {
	return &TMDBProvider{client: client, logger: logging.NewComponentLogger(logger, "search.tmdb")}
}

func (p *TMDBProvider) Name() string { return config.ProviderTMDB }

func (p *TMDBProvider) Supports(t content.Type) bool { return t == content.TypeVideo }

func (p *TMDBProvider) Search(ctx context.Context, q Query) (Page, error) {
	resp, err := p.client.SearchMulti(ctx, q.Text, tmdb.SearchOptions{Page: q.Page, Language: q.Language})
	if err != nil {
		return Page{}, err
	}
	page := Page{Total: resp.TotalResults, HasMore: resp.Page < resp.TotalPages}
	for i, result := range resp.Results {
		candidate := content.MatchCandidate{
			ExternalID:     result.MediaType + ":" + strconv.FormatInt(result.ID, 10),
			ExternalSource: p.Name(),
			Title:          result.DisplayTitle(),
			CoverImageURL:  result.PosterURL(),
			Metadata: map[string]any{
				"mediaType":     result.MediaType,
				"year":          result.Year(),
				"originalTitle": firstNonEmpty(result.OriginalTitle, result.OriginalName),
				"overview":      result.Overview,
				"voteAverage":   result.VoteAverage,
			},
		}
		if i < creatorLookups {
			credits, err := p.client.GetCredits(ctx, result.MediaType, result.ID)
			if err != nil {
				p.logger.Debug("tmdb credits lookup failed",
					logging.Int("tmdb_id", int(result.ID)),
					logging.Error(err),
				)
			} else {
				candidate.Creator = credits.Director()
			}
		}
		page.Items = append(page.Items, candidate)
	}
	return page, nil
}

// SpotifyProvider serves MUSIC through Spotify album search.
type SpotifyProvider struct {
	client *spotify.Client
}

// NewSpotifyProvider wraps a Spotify client.
func NewSpotifyProvider(client *spotify.Client) *SpotifyProvider {
	return &SpotifyProvider{client: client}
}

func (p *SpotifyProvider) Name() string { return config.ProviderSpotify }

func (p *SpotifyProvider) Supports(t content.Type) bool { return t == content.TypeMusic }

func (p *SpotifyProvider) Search(ctx context.Context, q Query) (Page, error) {
	result, err := p.client.SearchAlbums(ctx, q.Text, q.Page, q.PageSize)
	if err != nil {
		return Page{}, err
	}
	page := Page{Total: result.Total, HasMore: result.Next}
	for _, album := range result.Albums {
		page.Items = append(page.Items, content.MatchCandidate{
			ExternalID:     album.ID,
			ExternalSource: p.Name(),
			Title:          album.Name,
			Creator:        album.Artist(),
			CoverImageURL:  album.ImageURL,
			Metadata: map[string]any{
				"albumType":   album.AlbumType,
				"releaseDate": album.ReleaseDate,
				"url":         album.URL,
			},
		})
	}
	return page, nil
}

// BooksProvider serves BOOK through Google Books.
type BooksProvider struct {
	client *books.Client
}

// NewBooksProvider wraps a Google Books client.
func NewBooksProvider(client *books.Client) *BooksProvider {
	return &BooksProvider{client: client}
}

func (p *BooksProvider) Name() string { return config.ProviderBooks }

func (p *BooksProvider) Supports(t content.Type) bool { return t == content.TypeBook }

func (p *BooksProvider) Search(ctx context.Context, q Query) (Page, error) {
	resp, err := p.client.SearchVolumes(ctx, q.Text, books.SearchOptions{
		Page:     q.Page,
		PageSize: q.PageSize,
		Language: q.Language,
	})
	if err != nil {
		return Page{}, err
	}
	page := Page{Total: resp.TotalItems, HasMore: q.Page*q.PageSize < resp.TotalItems}
	for _, volume := range resp.Items {
		info := volume.VolumeInfo
		page.Items = append(page.Items, content.MatchCandidate{
			ExternalID:     volume.ID,
			ExternalSource: p.Name(),
			Title:          info.Title,
			Creator:        info.Author(),
			CoverImageURL:  info.CoverURL(),
			Metadata: map[string]any{
				"publisher":     info.Publisher,
				"publishedDate": info.PublishedDate,
				"isbn":          info.ISBN(),
				"pageCount":     info.PageCount,
				"language":      info.Language,
			},
		})
	}
	return page, nil
}

// RAWGProvider serves GAME through RAWG.
type RAWGProvider struct {
	client *rawg.Client
	logger *slog.Logger
}

// NewRAWGProvider wraps a RAWG client.
func NewRAWGProvider(client *rawg.Client, logger *slog.Logger) *RAWGProvider {
	return &RAWGProvider{client: client, logger: logging.NewComponentLogger(logger, "search.rawg")}
}

func (p *RAWGProvider) Name() string { return config.ProviderRAWG }

func (p *RAWGProvider) Supports(t content.Type) bool { return t == content.TypeGame }

func (p *RAWGProvider) Search(ctx context.Context, q Query) (Page, error) {
	resp, err := p.client.SearchGames(ctx, q.Text, q.Page, q.PageSize)
	if err != nil {
		return Page{}, err
	}
	page := Page{Total: resp.Count, HasMore: resp.Next != ""}
	for i, game := range resp.Results {
		genres := make([]string, 0, len(game.Genres))
		for _, genre := range game.Genres {
			genres = append(genres, genre.Name)
		}
		candidate := content.MatchCandidate{
			ExternalID:     strconv.FormatInt(game.ID, 10),
			ExternalSource: p.Name(),
			Title:          game.Name,
			CoverImageURL:  game.BackgroundImage,
			Metadata: map[string]any{
				"released":  game.Released,
				"platforms": game.PlatformNames(),
				"genres":    genres,
				"rating":    game.Rating,
			},
		}
		if i < creatorLookups {
			details, err := p.client.GetGame(ctx, game.ID)
			if err != nil {
				p.logger.Debug("rawg details lookup failed",
					logging.Int("rawg_id", int(game.ID)),
					logging.Error(err),
				)
			} else {
				candidate.Creator = details.Developer()
			}
		}
		page.Items = append(page.Items, candidate)
	}
	return page, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
