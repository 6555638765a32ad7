package itemparse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediashelf/internal/content"
	"mediashelf/internal/extraction"
	"mediashelf/internal/logging"
)

// Mode selects how raw input is interpreted.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeText       Mode = "text"
	ModeURL        Mode = "url"
)

// ParseMode normalizes a mode label.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeStructured, "json":
		return ModeStructured, nil
	case ModeText, "":
		return ModeText, nil
	case ModeURL:
		return ModeURL, nil
	default:
		return "", fmt.Errorf("unknown input mode %q", raw)
	}
}

// Extractor is the extraction collaborator used for text and URL input.
type Extractor interface {
	ExtractFromText(ctx context.Context, text, hint string) (extraction.Result, error)
	ExtractFromURL(ctx context.Context, rawURL, hint string) (extraction.Result, error)
}

// Input is one raw submission. Hint optionally names the expected content type.
type Input struct {
	Mode    Mode
	Payload string
	Hint    string
}

// Result is the parsed working list plus the URL the items came from.
type Result struct {
	Items     []content.ExtractedItem
	SourceURL string
}

// Parser dispatches raw input to local parsing or the extraction collaborator.
type Parser struct {
	extractor Extractor
	logger    *slog.Logger
}

// New constructs a Parser. extractor may be nil when only structured input is used.
func New(extractor Extractor, logger *slog.Logger) *Parser {
	return &Parser{extractor: extractor, logger: logging.NewComponentLogger(logger, "itemparse")}
}

// Parse converts input into extracted items. Every returned item has an ID.
func (p *Parser) Parse(ctx context.Context, input Input) (Result, error) {
	switch input.Mode {
	case ModeStructured:
		items, err := ParseStructured([]byte(input.Payload))
		if err != nil {
			p.logger.Info("structured input rejected", logging.Error(err))
			return Result{}, err
		}
		return Result{Items: items}, nil
	case ModeText, ModeURL:
		return p.delegate(ctx, input)
	default:
		return Result{}, &ValidationError{Reason: fmt.Sprintf("unknown input mode %q", input.Mode)}
	}
}

func (p *Parser) delegate(ctx context.Context, input Input) (Result, error) {
	payload := strings.TrimSpace(input.Payload)
	if payload == "" {
		return Result{}, &ValidationError{Reason: "input is empty"}
	}
	if p.extractor == nil {
		return Result{}, extraction.Failure("text and URL input are not configured", nil)
	}

	var (
		res extraction.Result
		err error
	)
	if input.Mode == ModeURL {
		res, err = p.extractor.ExtractFromURL(ctx, payload, input.Hint)
	} else {
		res, err = p.extractor.ExtractFromText(ctx, payload, input.Hint)
	}
	if err != nil {
		return Result{}, extraction.AsError(err)
	}

	items := make([]content.ExtractedItem, 0, len(res.Items))
	for _, item := range res.Items {
		item.EnsureID()
		items = append(items, item)
	}
	sourceURL := res.SourceURL
	if sourceURL == "" && input.Mode == ModeURL {
		sourceURL = payload
	}
	p.logger.Info("input extracted",
		logging.String("mode", string(input.Mode)),
		logging.Int("items", len(items)),
	)
	return Result{Items: items, SourceURL: sourceURL}, nil
}
