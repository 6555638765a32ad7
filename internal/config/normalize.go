package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeExtraction()
	c.normalizeProviders()
	c.normalizeSearch()
	c.normalizeLogging()
	return nil
}

func envFallback(current string, keys ...string) string {
	current = strings.TrimSpace(current)
	if current != "" {
		return current
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(orDefault(c.Paths.DataDir, defaultDataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(orDefault(c.Paths.LogDir, defaultLogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	dbPath := strings.TrimSpace(c.Library.DBPath)
	if dbPath == "" {
		dbPath = filepath.Join(c.Paths.DataDir, defaultDBFileName)
	}
	var err error
	if c.Library.DBPath, err = expandPath(dbPath); err != nil {
		return fmt.Errorf("library.db_path: %w", err)
	}
	c.Library.SubjectID = orDefault(c.Library.SubjectID, defaultSubjectID)
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = envFallback(c.LLM.APIKey, "MEDIASHELF_LLM_API_KEY", "OPENROUTER_API_KEY")
	c.LLM.BaseURL = orDefault(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = orDefault(c.LLM.Model, defaultLLMModel)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = orDefault(c.LLM.Title, defaultLLMTitle)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.FetchTimeoutSeconds <= 0 {
		c.Extraction.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Extraction.MaxPageChars <= 0 {
		c.Extraction.MaxPageChars = defaultMaxPageChars
	}
	c.Extraction.UserAgent = orDefault(c.Extraction.UserAgent, defaultUserAgent)
}

func (c *Config) normalizeProviders() {
	c.TMDB.APIKey = envFallback(c.TMDB.APIKey, "TMDB_API_KEY")
	c.TMDB.BaseURL = strings.TrimRight(orDefault(c.TMDB.BaseURL, defaultTMDBBaseURL), "/")

	c.Spotify.ClientID = envFallback(c.Spotify.ClientID, "SPOTIFY_ID")
	c.Spotify.ClientSecret = envFallback(c.Spotify.ClientSecret, "SPOTIFY_SECRET")
	c.Spotify.Market = strings.ToUpper(orDefault(c.Spotify.Market, defaultSpotifyMarket))

	c.Books.APIKey = envFallback(c.Books.APIKey, "GOOGLE_BOOKS_API_KEY")
	c.Books.BaseURL = strings.TrimRight(orDefault(c.Books.BaseURL, defaultBooksBaseURL), "/")

	c.RAWG.APIKey = envFallback(c.RAWG.APIKey, "RAWG_API_KEY")
	c.RAWG.BaseURL = strings.TrimRight(orDefault(c.RAWG.BaseURL, defaultRAWGBaseURL), "/")
}

func (c *Config) normalizeSearch() {
	c.Search.PreferProvider = strings.ToLower(strings.TrimSpace(c.Search.PreferProvider))
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = defaultSearchPageSize
	}
	if c.Search.CacheTTLSeconds < 0 {
		c.Search.CacheTTLSeconds = 0
	}
	if c.Search.TimeoutSeconds <= 0 {
		c.Search.TimeoutSeconds = defaultSearchTimeout
	}
	c.Search.LocalizedLanguage = orDefault(c.Search.LocalizedLanguage, defaultLocalizedLanguage)
	c.Search.OriginalLanguage = orDefault(c.Search.OriginalLanguage, defaultOriginalLanguage)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(orDefault(c.Logging.Level, defaultLogLevel))
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
