// Package config loads, normalizes, and validates mediashelf configuration.
//
// Configuration is read from TOML (default ~/.config/mediashelf/config.toml,
// then ./mediashelf.toml), merged over repository defaults, and completed from
// environment variables, including any .env file found alongside it. Load
// returns the resolved path and whether the file existed so callers can offer
// `mediashelf config init` when it did not.
package config
