package override_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mediashelf/internal/content"
	"mediashelf/internal/override"
	"mediashelf/internal/search"
	"mediashelf/internal/services"
)

type stubSearcher struct {
	page  search.Page
	err   error
	query search.Query
}

func (s *stubSearcher) Search(_ context.Context, q search.Query) (search.Page, error) {
	s.query = q
	return s.page, s.err
}

func TestSearchRanksCreatorMatchesFirstWithoutSelecting(t *testing.T) {
	stub := &stubSearcher{page: search.Page{
		Total:   30,
		HasMore: true,
		Items: []content.MatchCandidate{
			{ExternalID: "1", Title: "데미안 해설", Creator: "김철수"},
			{ExternalID: "2", Title: "데미안", Creator: "헤르만 헤세", Metadata: map[string]any{"publisher": "민음사", "isbn": "978"}},
			{ExternalID: "3", Title: "데미안", Creator: "Hermann Hesse, 헤르만 헤세"},
		},
	}}
	adapter := override.New(stub, 10, nil)

	result, err := adapter.Search(context.Background(), override.Request{
		Type:          content.TypeBook,
		Query:         " 데미안 ",
		Page:          3,
		TargetCreator: "헤르만 헤세",
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if stub.query.Page != 3 || stub.query.Text != "데미안" || stub.query.PageSize != 10 {
		t.Fatalf("unexpected passthrough query %#v", stub.query)
	}
	ids := ""
	for _, c := range result.Candidates() {
		ids += c.ExternalID
	}
	if ids != "231" {
		t.Fatalf("expected creator matches first in provider order, got %s", ids)
	}
	if !result.Rows[0].CreatorMatch || result.Rows[2].CreatorMatch {
		t.Fatalf("unexpected creator flags: %#v", result.Rows)
	}
	if result.Total != 30 || !result.HasMore || result.Page != 3 {
		t.Fatalf("unexpected paging: %#v", result)
	}
	if result.Rows[0].Similarity != 1 {
		t.Fatalf("expected exact title similarity 1, got %v", result.Rows[0].Similarity)
	}
	cells := result.Rows[0].Cells
	if len(cells) != len(result.Columns) || cells[1] != "헤르만 헤세" || cells[2] != "민음사" || cells[4] != "978" {
		t.Fatalf("unexpected cells %v for columns %v", cells, result.Columns)
	}
}

func TestSearchUnavailableIsSearchError(t *testing.T) {
	stub := &stubSearcher{err: fmt.Errorf("%w: timeout", search.ErrUnavailable)}
	_, err := override.New(stub, 0, nil).Search(context.Background(), override.Request{Type: content.TypeGame, Query: "Hades"})
	if !errors.Is(err, services.ErrSearch) {
		t.Fatalf("expected ErrSearch, got %v", err)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := override.New(&stubSearcher{}, 0, nil).Search(context.Background(), override.Request{Type: content.TypeGame})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSummarizeFormatsMetadata(t *testing.T) {
	c := content.MatchCandidate{
		Title:    "Hades",
		Creator:  "Supergiant Games",
		Metadata: map[string]any{"released": "2020-09-17", "platforms": []string{"PC", "Switch"}},
	}
	cells := override.Summarize(content.TypeGame, c)
	want := []string{"Hades", "Supergiant Games", "2020-09-17", "PC, Switch"}
	if len(cells) != len(want) {
		t.Fatalf("unexpected cells %v", cells)
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Fatalf("cell %d: want %q, got %q", i, want[i], cells[i])
		}
	}

	// Metadata decoded from JSON arrives as []any and float64.
	decoded := content.MatchCandidate{Metadata: map[string]any{"platforms": []any{"PS5", "PC"}, "released": float64(2020)}}
	cells = override.Summarize(content.TypeGame, decoded)
	if cells[2] != "2020" || cells[3] != "PS5, PC" {
		t.Fatalf("unexpected decoded cells %v", cells)
	}
}

func TestColumnsForEveryType(t *testing.T) {
	for _, typ := range content.AllTypes() {
		cols := override.Columns(typ)
		if len(cols) < 2 || cols[0].Key != "title" || cols[1].Key != "creator" {
			t.Fatalf("%s: unexpected columns %v", typ, cols)
		}
	}
	cols := override.Columns(content.TypeVideo)
	cols[0].Label = "changed"
	if override.Columns(content.TypeVideo)[0].Label != "Title" {
		t.Fatal("Columns must return a copy")
	}
}
