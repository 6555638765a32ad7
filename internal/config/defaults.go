package config

const (
	defaultConfigPath          = "~/.config/mediashelf/config.toml"
	defaultDataDir             = "~/.local/share/mediashelf"
	defaultLogDir              = "~/.local/share/mediashelf/logs"
	defaultDBFileName          = "library.db"
	defaultSubjectID           = "default"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-3-flash-preview"
	defaultLLMTitle            = "mediashelf"
	defaultLLMTimeoutSeconds   = 60
	defaultFetchTimeoutSeconds = 20
	defaultMaxPageChars        = 20000
	defaultUserAgent           = "mediashelf/dev (+https://github.com/mediashelf/mediashelf)"
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultBooksBaseURL        = "https://www.googleapis.com/books/v1"
	defaultRAWGBaseURL         = "https://api.rawg.io/api"
	defaultSpotifyMarket       = "KR"
	defaultSearchPageSize      = 10
	defaultCacheTTLSeconds     = 900
	defaultRequestsPerSecond   = 4
	defaultSearchTimeout       = 15
	defaultLocalizedLanguage   = "ko-KR"
	defaultOriginalLanguage    = "en-US"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogMaxSizeMB        = 10
	defaultLogMaxBackups       = 5
	defaultLogMaxAgeDays       = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Library: Library{
			SubjectID: defaultSubjectID,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Extraction: Extraction{
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
			MaxPageChars:        defaultMaxPageChars,
			UserAgent:           defaultUserAgent,
		},
		TMDB: TMDB{
			BaseURL: defaultTMDBBaseURL,
		},
		Spotify: Spotify{
			Market: defaultSpotifyMarket,
		},
		Books: Books{
			Enabled: true,
			BaseURL: defaultBooksBaseURL,
		},
		RAWG: RAWG{
			BaseURL: defaultRAWGBaseURL,
		},
		Search: Search{
			PageSize:          defaultSearchPageSize,
			CacheTTLSeconds:   defaultCacheTTLSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
			TimeoutSeconds:    defaultSearchTimeout,
			LocalizedLanguage: defaultLocalizedLanguage,
			OriginalLanguage:  defaultOriginalLanguage,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
