package testsupport

import (
	"path/filepath"
	"testing"

	"mediashelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Only the keyless Google Books provider is enabled; provider base URLs point
// at the real services, so tests that issue requests override them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Library.DBPath = filepath.Join(base, "data", "library.db")
	cfgVal.Library.SubjectID = "test-subject"
	cfgVal.LLM.APIKey = ""
	cfgVal.TMDB.APIKey = ""
	cfgVal.Spotify.ClientID = ""
	cfgVal.Spotify.ClientSecret = ""
	cfgVal.RAWG.APIKey = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDB enables the TMDB provider against baseURL.
func WithTMDB(key, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
		if baseURL != "" {
			b.cfg.TMDB.BaseURL = baseURL
		}
	}
}

// WithBooksURL points the Google Books provider at baseURL.
func WithBooksURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Books.BaseURL = baseURL
	}
}

// WithLLM sets the extraction model endpoint and key.
func WithLLM(key, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = key
		if baseURL != "" {
			b.cfg.LLM.BaseURL = baseURL
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
