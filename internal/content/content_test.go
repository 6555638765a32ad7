package content_test

import (
	"testing"

	"mediashelf/internal/content"
)

func TestParseTypeCaseInsensitive(t *testing.T) {
	cases := map[string]content.Type{
		"BOOK":        content.TypeBook,
		" video ":     content.TypeVideo,
		"Music":       content.TypeMusic,
		"certificate": content.TypeCertificate,
	}
	for raw, want := range cases {
		got, ok := content.ParseType(raw)
		if !ok || got != want {
			t.Fatalf("ParseType(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := content.ParseType("PODCAST"); ok {
		t.Fatal("expected PODCAST to be rejected")
	}
	if _, ok := content.ParseType(""); ok {
		t.Fatal("expected empty type to be rejected")
	}
}

func TestLocalizedQueryFallsBackToTitle(t *testing.T) {
	item := content.ExtractedItem{Title: "Parasite"}
	if got := item.LocalizedQuery(); got != "Parasite" {
		t.Fatalf("expected fallback to title, got %q", got)
	}
	item.TitleLocalized = "기생충"
	if got := item.LocalizedQuery(); got != "기생충" {
		t.Fatalf("expected localized title, got %q", got)
	}
	if got := item.OriginalQuery(); got != "Parasite" {
		t.Fatalf("expected original title, got %q", got)
	}
}

func TestNormalizeRating(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{3.2, 3},
		{3.3, 3.5},
		{4.75, 5},
		{9, 5},
	}
	for _, tc := range cases {
		in := tc.in
		got := content.NormalizeRating(&in)
		if got == nil || *got != tc.want {
			t.Fatalf("NormalizeRating(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if content.NormalizeRating(nil) != nil {
		t.Fatal("expected nil rating to stay nil")
	}
}

func TestCandidatesMergeDeduplicates(t *testing.T) {
	a := content.MatchCandidate{ExternalID: "1", ExternalSource: "tmdb", Title: "A"}
	b := content.MatchCandidate{ExternalID: "2", ExternalSource: "tmdb", Title: "B"}
	c := content.MatchCandidate{ExternalID: "1", ExternalSource: "books", Title: "C"}
	p := content.ProcessedItem{
		LocalizedCandidates: []content.MatchCandidate{a, b},
		OriginalCandidates:  []content.MatchCandidate{b, c},
	}
	merged := p.Candidates()
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged candidates, got %d", len(merged))
	}
	if merged[0].Title != "A" || merged[1].Title != "B" || merged[2].Title != "C" {
		t.Fatalf("unexpected merge order: %+v", merged)
	}
}

func TestProcessedCloneIsDeep(t *testing.T) {
	selected := content.MatchCandidate{ExternalID: "1", Metadata: map[string]any{"year": "2019"}}
	p := content.ProcessedItem{SelectedMatch: &selected}
	clone := p.Clone()
	clone.SelectedMatch.Metadata["year"] = "2020"
	if selected.Metadata["year"] != "2019" {
		t.Fatal("expected clone to own its metadata map")
	}
}
