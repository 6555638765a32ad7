package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mediashelf/internal/config"
	"mediashelf/internal/content"
	"mediashelf/internal/logging"
	"mediashelf/internal/matching"
	"mediashelf/internal/search"
	"mediashelf/internal/services"
)

// Request is one working-list item submitted for matching.
type Request struct {
	Index int
	Item  content.ExtractedItem
}

// Hints carry per-call collaborator choices.
type Hints struct {
	PreferProvider string
}

// Languages are the query languages of the two branches.
type Languages struct {
	Localized string
	Original  string
}

// Orchestrator resolves extracted items against the content-search service.
type Orchestrator struct {
	searcher  search.Searcher
	languages Languages
	pageSize  int
	logger    *slog.Logger
}

// New builds an orchestrator. pageSize bounds each branch's candidate list;
// zero leaves it to the searcher.
func New(searcher search.Searcher, languages Languages, pageSize int, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		searcher:  searcher,
		languages: languages,
		pageSize:  pageSize,
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
	}
}

// NewFromConfig builds an orchestrator with the configured languages.
func NewFromConfig(cfg *config.Config, searcher search.Searcher, logger *slog.Logger) *Orchestrator {
	return New(searcher, Languages{
		Localized: cfg.Search.LocalizedLanguage,
		Original:  cfg.Search.OriginalLanguage,
	}, cfg.Search.PageSize, logger)
}

type branchKey struct {
	contentType content.Type
	text        string
	language    string
}

// Resolve searches both title branches of every request and picks a default
// match per item. An item with no candidates in either branch still yields a
// ProcessedItem with matchSource manual. A search that fails for one query
// leaves that branch empty. When the search service is unreachable, or ctx
// ends, Resolve returns a single ErrSearch error and no results.
func (o *Orchestrator) Resolve(ctx context.Context, requests []Request, hints Hints) (map[int]content.ProcessedItem, error) {
	if o.searcher == nil {
		return nil, services.Wrap(services.ErrSearch, "orchestrator", "resolve", "no search service configured", nil)
	}
	start := time.Now()
	results := make(map[int]content.ProcessedItem, len(requests))
	memo := make(map[branchKey][]content.MatchCandidate)

	for _, req := range requests {
		itemCtx := services.WithItemIndex(ctx, req.Index)
		localized, err := o.branch(itemCtx, memo, req, req.Item.LocalizedQuery(), o.languages.Localized, hints)
		if err != nil {
			return nil, err
		}
		original, err := o.branch(itemCtx, memo, req, req.Item.OriginalQuery(), o.languages.Original, hints)
		if err != nil {
			return nil, err
		}
		processed := Decide(req.Item, localized, original)
		o.logger.Debug("item resolved",
			logging.Int(logging.FieldItemIndex, req.Index),
			logging.String(logging.FieldContentType, req.Item.Type.String()),
			logging.String("match_source", string(processed.MatchSource)),
			logging.Int("localized_candidates", len(localized)),
			logging.Int("original_candidates", len(original)),
		)
		results[req.Index] = processed
	}

	o.logger.Info("batch matched",
		logging.String(logging.FieldEventType, "match_batch_complete"),
		logging.Int("items", len(requests)),
		logging.Int("searches", len(memo)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// Decide builds the ProcessedItem for one item from its two candidate lists.
// The localized branch wins when it has candidates, then the original branch;
// with neither the item is left for manual resolution. Either branch targets
// the item's creator, or its localized creator when the creator is blank.
func Decide(item content.ExtractedItem, localized, original []content.MatchCandidate) content.ProcessedItem {
	target := firstNonBlank(item.Creator, item.CreatorLocalized)
	processed := content.ProcessedItem{
		LocalizedCandidates: localized,
		OriginalCandidates:  original,
		Status:              content.DefaultStatus,
	}
	switch {
	case len(localized) > 0:
		processed.MatchSource = content.SourceLocalized
		processed.SelectedMatch = matching.PickBest(localized, target)
		processed.LastSearchQuery = item.LocalizedQuery()
	case len(original) > 0:
		processed.MatchSource = content.SourceOriginal
		processed.SelectedMatch = matching.PickBest(original, target)
		processed.LastSearchQuery = item.OriginalQuery()
	default:
		processed.MatchSource = content.SourceManual
		processed.LastSearchQuery = item.LocalizedQuery()
	}
	return processed
}

func (o *Orchestrator) branch(ctx context.Context, memo map[branchKey][]content.MatchCandidate, req Request, text, lang string, hints Hints) ([]content.MatchCandidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	key := branchKey{contentType: req.Item.Type, text: matching.Normalize(text), language: lang}
	if cached, ok := memo[key]; ok {
		return cloneCandidates(cached), nil
	}
	page, err := o.searcher.Search(ctx, search.Query{
		Type:           req.Item.Type,
		Text:           text,
		Page:           1,
		PageSize:       o.pageSize,
		PreferProvider: hints.PreferProvider,
		Language:       lang,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, search.ErrUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "batch search failed", "match_batch_failed",
				logging.String("query", text),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check network access and provider credentials, then retry matching"),
			)
			return nil, services.Wrap(services.ErrSearch, "orchestrator", "resolve",
				fmt.Sprintf("item %d %q", req.Index+1, text), err)
		}
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "item search failed; treating branch as empty", "match_item_search_failed",
			logging.String("query", text),
			logging.Error(err),
			logging.String(logging.FieldImpact, "item may need manual matching"),
		)
		memo[key] = nil
		return nil, nil
	}
	memo[key] = cloneCandidates(page.Items)
	return page.Items, nil
}

func cloneCandidates(in []content.MatchCandidate) []content.MatchCandidate {
	if in == nil {
		return nil
	}
	out := make([]content.MatchCandidate, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
