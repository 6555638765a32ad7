package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Provider tags accepted by search.prefer_provider.
const (
	ProviderTMDB    = "tmdb"
	ProviderSpotify = "spotify"
	ProviderBooks   = "books"
	ProviderRAWG    = "rawg"
)

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Library contains configuration for the committed-record store.
type Library struct {
	DBPath    string `toml:"db_path"`
	SubjectID string `toml:"subject_id"`
}

// LLM contains connection settings for the extraction model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Extraction contains settings for fetching pages handed to the extraction model.
type Extraction struct {
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
	MaxPageChars        int    `toml:"max_page_chars"`
	UserAgent           string `toml:"user_agent"`
}

// TMDB contains configuration for The Movie Database API (VIDEO).
type TMDB struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Spotify contains client-credentials configuration for the Spotify Web API (MUSIC).
type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Market       string `toml:"market"`
}

// Books contains configuration for the Google Books volumes API (BOOK).
type Books struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// RAWG contains configuration for the RAWG games API (GAME).
type RAWG struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Search contains provider-independent content-search settings.
type Search struct {
	PreferProvider    string  `toml:"prefer_provider"`
	PageSize          int     `toml:"page_size"`
	CacheTTLSeconds   int     `toml:"cache_ttl_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	LocalizedLanguage string  `toml:"localized_language"`
	OriginalLanguage  string  `toml:"original_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for mediashelf.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Library: SQLite store location and the subject records are filed under
//   - LLM, Extraction: free-text and URL extraction
//   - TMDB, Spotify, Books, RAWG: content-search providers
//   - Search: provider preference, caching, rate limits, query languages
//   - Logging: log format, level, and file rotation
type Config struct {
	Paths      Paths      `toml:"paths"`
	Library    Library    `toml:"library"`
	LLM        LLM        `toml:"llm"`
	Extraction Extraction `toml:"extraction"`
	TMDB       TMDB       `toml:"tmdb"`
	Spotify    Spotify    `toml:"spotify"`
	Books      Books      `toml:"books"`
	RAWG       RAWG       `toml:"rawg"`
	Search     Search     `toml:"search"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory or next to
// the config file is loaded first so environment fallbacks can see it; variables that
// are already set win.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	loadDotEnv(resolvedPath)

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}
		// Missing or malformed .env files never block startup; explicit
		// config values and real environment variables still apply.
		_ = godotenv.Load(candidate)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediashelf.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log, and database directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Library.DBPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProviderConfigured reports whether the named search provider has the
// credentials it needs.
func (c *Config) ProviderConfigured(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderTMDB:
		return c.TMDB.APIKey != ""
	case ProviderSpotify:
		return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
	case ProviderBooks:
		return c.Books.Enabled
	case ProviderRAWG:
		return c.RAWG.APIKey != ""
	default:
		return false
	}
}

// ConfiguredProviders lists the configured search providers in registration order.
func (c *Config) ConfiguredProviders() []string {
	var out []string
	for _, name := range []string{ProviderTMDB, ProviderSpotify, ProviderBooks, ProviderRAWG} {
		if c.ProviderConfigured(name) {
			out = append(out, name)
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved LLM connection settings.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings used by extraction.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
