package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if strings.TrimSpace(c.Library.DBPath) == "" {
		return errors.New("library.db_path must be set")
	}
	if strings.TrimSpace(c.Library.SubjectID) == "" {
		return errors.New("library.subject_id must be set")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if len(c.ConfiguredProviders()) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("no search provider configured. Set TMDB_API_KEY, SPOTIFY_ID/SPOTIFY_SECRET, RAWG_API_KEY, or enable [books] in %s (create with 'mediashelf config init')", defaultPath)
	}
	if prefer := c.Search.PreferProvider; prefer != "" {
		switch prefer {
		case ProviderTMDB, ProviderSpotify, ProviderBooks, ProviderRAWG:
		default:
			return fmt.Errorf("search.prefer_provider: unknown provider %q", prefer)
		}
		if !c.ProviderConfigured(prefer) {
			return fmt.Errorf("search.prefer_provider %q is not configured", prefer)
		}
	}
	if c.Search.RequestsPerSecond < 0 {
		return errors.New("search.requests_per_second must be zero (unlimited) or positive")
	}
	if c.Search.PageSize > 40 {
		return errors.New("search.page_size must be 40 or less")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
