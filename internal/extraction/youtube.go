package extraction

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// VideoFetcher resolves YouTube watch/share links to their title, channel, and
// description without downloading any media.
type VideoFetcher struct {
	client youtube.Client
}

// NewVideoFetcher builds a VideoFetcher using the given HTTP client.
func NewVideoFetcher(httpClient *http.Client) *VideoFetcher {
	return &VideoFetcher{client: youtube.Client{HTTPClient: httpClient}}
}

// Fetch looks up the video metadata for rawURL.
func (f *VideoFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	video, err := f.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("youtube lookup: %w", err)
	}
	return Page{
		URL:         rawURL,
		Title:       strings.TrimSpace(video.Title),
		Author:      strings.TrimSpace(video.Author),
		Description: strings.TrimSpace(video.Description),
	}, nil
}

// IsYouTubeURL reports whether u points at a YouTube video.
func IsYouTubeURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/") != ""
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		return u.Query().Get("v") != "" || strings.HasPrefix(u.Path, "/shorts/") || strings.HasPrefix(u.Path, "/live/")
	default:
		return false
	}
}
