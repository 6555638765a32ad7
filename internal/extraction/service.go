package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mediashelf/internal/config"
	"mediashelf/internal/content"
	"mediashelf/internal/logging"
	"mediashelf/internal/services"
	"mediashelf/internal/services/llm"
)

const defaultMaxPageChars = 20000

// Completer issues JSON-only chat completions. *llm.Client satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service is the LLM-backed extraction collaborator.
type Service struct {
	completer Completer
	web       PageFetcher
	video     PageFetcher
	maxChars  int
	logger    *slog.Logger
}

// Option customizes the service.
type Option func(*Service)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.NewComponentLogger(logger, "extraction") }
}

// WithWebFetcher replaces the HTML page fetcher.
func WithWebFetcher(f PageFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.web = f
		}
	}
}

// WithVideoFetcher replaces the YouTube fetcher.
func WithVideoFetcher(f PageFetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.video = f
		}
	}
}

// WithMaxPageChars caps how much page text is sent to the model.
func WithMaxPageChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// New constructs a Service around the given completer.
func New(completer Completer, opts ...Option) *Service {
	httpClient := &http.Client{Timeout: 20 * time.Second}
	s := &Service{
		completer: completer,
		web:       NewWebFetcher(httpClient, ""),
		video:     NewVideoFetcher(httpClient),
		maxChars:  defaultMaxPageChars,
		logger:    logging.NewComponentLogger(nil, "extraction"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig wires the service from configuration. It fails when no LLM
// api key is available.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "extraction", "init", "config required", nil)
	}
	llmCfg := cfg.GetLLM()
	if llmCfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "extraction", "init",
			"llm.api_key is required for text and URL input (set OPENROUTER_API_KEY)", nil)
	}
	client := llm.NewClient(llm.Config{
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Model:          llmCfg.Model,
		Referer:        llmCfg.Referer,
		Title:          llmCfg.Title,
		TimeoutSeconds: llmCfg.TimeoutSeconds,
	})
	httpClient := &http.Client{Timeout: time.Duration(cfg.Extraction.FetchTimeoutSeconds) * time.Second}
	return New(client,
		WithLogger(logger),
		WithWebFetcher(NewWebFetcher(httpClient, cfg.Extraction.UserAgent)),
		WithVideoFetcher(NewVideoFetcher(httpClient)),
		WithMaxPageChars(cfg.Extraction.MaxPageChars),
	), nil
}

// ExtractFromText asks the model to list the content mentioned in text. hint,
// when set, is a content type the caller expects.
func (s *Service) ExtractFromText(ctx context.Context, text, hint string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, Failure("there is no text to extract from", nil)
	}
	items, err := s.extract(ctx, buildTextPrompt(text, hint))
	if err != nil {
		return Result{}, err
	}
	return Result{Items: items}, nil
}

// ExtractFromURL fetches rawURL, then extracts items from the page summary.
// The result's SourceURL is the URL that was fetched.
func (s *Service) ExtractFromURL(ctx context.Context, rawURL, hint string) (Result, error) {
	parsed, err := validateURL(rawURL)
	if err != nil {
		return Result{}, Failure(fmt.Sprintf("%q is not a valid web address", strings.TrimSpace(rawURL)), err)
	}
	fetcher := s.web
	if IsYouTubeURL(parsed) {
		fetcher = s.video
	}
	page, err := fetcher.Fetch(ctx, parsed.String())
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, Failure("extraction was cancelled", ctx.Err())
		}
		logging.WarnWithContext(s.logger, "page fetch failed", "extraction_fetch_failed",
			logging.String("url", parsed.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "url input cannot be used"),
			logging.String(logging.FieldErrorHint, "check the address or paste the page text instead"),
		)
		return Result{}, Failure("the page could not be loaded: "+err.Error(), err)
	}
	if page.URL == "" {
		page.URL = parsed.String()
	}
	items, err := s.extract(ctx, buildPagePrompt(page, hint, s.maxChars))
	if err != nil {
		return Result{}, err
	}
	for i := range items {
		if items[i].SourceURL == "" {
			items[i].SourceURL = page.URL
		}
	}
	return Result{Items: items, SourceURL: page.URL}, nil
}

func (s *Service) extract(ctx context.Context, userPrompt string) ([]content.ExtractedItem, error) {
	if s.completer == nil {
		return nil, Failure("text extraction is not configured", services.ErrConfiguration)
	}
	started := time.Now()
	raw, err := s.completer.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, Failure("extraction was cancelled", err)
		}
		logging.ErrorWithContext(s.logger, "llm extraction failed", "extraction_llm_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify llm.api_key and llm.model"),
		)
		return nil, Failure("the extraction service is unavailable, try again later", err)
	}
	var payload llmPayload
	if err := llm.DecodeLLMJSON(raw, &payload); err != nil {
		return nil, Failure("the extraction service returned an unreadable answer", err)
	}
	items, dropped := payload.normalize()
	if dropped > 0 {
		logging.WarnWithContext(s.logger, "dropped items with unknown content type", "extraction_items_dropped",
			logging.Int("dropped", dropped),
			logging.String(logging.FieldImpact, "some mentioned content will not appear in the list"),
		)
	}
	if len(items) == 0 {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return nil, Failure(msg, nil)
		}
		return nil, Failure("no books, videos, games, or music were found in the input", nil)
	}
	s.logger.Info("extraction completed",
		logging.Int("items", len(items)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return items, nil
}
