// Package override is the manual-override search adapter. It pages through the
// content-search service for a user-typed query and orders the page so that
// creator-matching rows come first. It never selects a row itself; the chosen
// row is applied by the session controller.
package override

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"mediashelf/internal/content"
	"mediashelf/internal/logging"
	"mediashelf/internal/matching"
	"mediashelf/internal/search"
	"mediashelf/internal/services"
)

// Request describes one manual search.
type Request struct {
	Type  content.Type
	Query string
	// Page is 1-based.
	Page           int
	PreferProvider string
	Language       string
	// TargetCreator only reorders rows.
	TargetCreator string
}

// Row is one displayed candidate.
type Row struct {
	Candidate    content.MatchCandidate
	CreatorMatch bool
	// Similarity compares the candidate title with the query, for display.
	Similarity float64
	Cells      []string
}

// Result is one page of rows.
type Result struct {
	Query   string
	Page    int
	Total   int
	HasMore bool
	Columns []Column
	Rows    []Row
}

// Candidates returns the candidates in display order.
func (r Result) Candidates() []content.MatchCandidate {
	out := make([]content.MatchCandidate, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Candidate
	}
	return out
}

// Adapter runs manual searches.
type Adapter struct {
	searcher search.Searcher
	pageSize int
	logger   *slog.Logger
}

// New builds an adapter. pageSize zero leaves paging to the searcher.
func New(searcher search.Searcher, pageSize int, logger *slog.Logger) *Adapter {
	return &Adapter{
		searcher: searcher,
		pageSize: pageSize,
		logger:   logging.NewComponentLogger(logger, "override"),
	}
}

// Search returns one page of candidates for req. An empty page is not an
// error; an unreachable search service is reported as services.ErrSearch.
func (a *Adapter) Search(ctx context.Context, req Request) (Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Result{}, services.Wrap(services.ErrValidation, "override", "search", "enter a search term", nil)
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	resp, err := a.searcher.Search(ctx, search.Query{
		Type:           req.Type,
		Text:           query,
		Page:           page,
		PageSize:       a.pageSize,
		PreferProvider: req.PreferProvider,
		Language:       req.Language,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return Result{}, err
		}
		return Result{}, services.Wrap(services.ErrSearch, "override", "search", query, err)
	}

	ranked := matching.RankByCreator(resp.Items, req.TargetCreator)
	result := Result{
		Query:   query,
		Page:    page,
		Total:   resp.Total,
		HasMore: resp.HasMore,
		Columns: Columns(req.Type),
		Rows:    make([]Row, 0, len(ranked)),
	}
	for _, candidate := range ranked {
		result.Rows = append(result.Rows, Row{
			Candidate:    candidate,
			CreatorMatch: matching.CreatorMatches(candidate.Creator, req.TargetCreator),
			Similarity:   matching.Similarity(candidate.Title, query),
			Cells:        Summarize(req.Type, candidate),
		})
	}
	a.logger.Debug("manual search",
		logging.String(logging.FieldContentType, req.Type.String()),
		logging.String("query", query),
		logging.Int("page", page),
		logging.Int("rows", len(result.Rows)),
	)
	return result, nil
}
