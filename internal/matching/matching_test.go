package matching_test

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"mediashelf/internal/content"
	"mediashelf/internal/matching"
)

func candidates(creators ...string) []content.MatchCandidate {
	out := make([]content.MatchCandidate, len(creators))
	for i, c := range creators {
		out[i] = content.MatchCandidate{ExternalID: string(rune('a' + i)), ExternalSource: "test", Creator: c}
	}
	return out
}

func TestPickBestEmptyReturnsNil(t *testing.T) {
	for _, target := range []string{"", "anyone"} {
		if got := matching.PickBest(nil, target); got != nil {
			t.Fatalf("expected nil for empty candidates, got %+v", got)
		}
	}
}

func TestPickBestBlankTargetReturnsFirst(t *testing.T) {
	list := candidates("Someone", "Other")
	for _, target := range []string{"", "   "} {
		got := matching.PickBest(list, target)
		if got == nil || got.ExternalID != "a" {
			t.Fatalf("expected first candidate for target %q, got %+v", target, got)
		}
	}
}

func TestPickBestReturnsFirstMatchingCandidate(t *testing.T) {
	list := candidates("Park Chan-wook", "Bong Joon-ho", "Bong Joon-ho")
	got := matching.PickBest(list, "Bong Joon-ho")
	if got == nil || got.ExternalID != "b" {
		t.Fatalf("expected second candidate, got %+v", got)
	}
}

func TestPickBestFallsBackToFirst(t *testing.T) {
	got := matching.PickBest(candidates("A", "B"), "Nobody Matches")
	if got == nil || got.ExternalID != "a" {
		t.Fatalf("expected fallback to first, got %+v", got)
	}
}

func TestPickBestBlankCandidateCreatorContainedInTarget(t *testing.T) {
	got := matching.PickBest(candidates("", "Rowling"), "Rowling")
	if got == nil || got.ExternalID != "a" {
		t.Fatalf("expected blank creator to match by containment, got %+v", got)
	}
}

func TestPickBestReturnsCopy(t *testing.T) {
	list := candidates("X")
	got := matching.PickBest(list, "")
	got.Title = "changed"
	if list[0].Title == "changed" {
		t.Fatal("expected PickBest to return a copy")
	}
}

func TestCreatorMatchesBidirectional(t *testing.T) {
	cases := []struct {
		candidate, target string
		want              bool
	}{
		{"J.K. Rowling", "Rowling", true},
		{"Rowling", "J.K. Rowling", true},
		{"  HERMANN HESSE ", "hermann hesse", true},
		{"Hermann Hesse", "Thomas Mann", false},
		{"", "Hesse", true},
		{"Hesse", "", false},
		{norm.NFD.String("헤르만 헤세"), "헤르만 헤세", true},
	}
	for _, tc := range cases {
		if got := matching.CreatorMatches(tc.candidate, tc.target); got != tc.want {
			t.Fatalf("CreatorMatches(%q, %q) = %v, want %v", tc.candidate, tc.target, got, tc.want)
		}
	}
}

func TestRankByCreatorIsStablePartition(t *testing.T) {
	list := candidates("Other 1", "Hesse", "Other 2", "Hermann Hesse")
	ranked := matching.RankByCreator(list, "Hesse")
	want := []string{"b", "d", "a", "c"}
	for i, id := range want {
		if ranked[i].ExternalID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].ExternalID)
		}
	}
	if list[0].ExternalID != "a" {
		t.Fatal("input slice must not be reordered")
	}
	if unchanged := matching.RankByCreator(list, ""); unchanged[0].ExternalID != "a" || len(unchanged) != 4 {
		t.Fatal("expected original order without target")
	}
}

func TestSimilarity(t *testing.T) {
	if got := matching.Similarity("Bong Joon-ho", "bong joon-ho"); got != 1 {
		t.Fatalf("expected identical normalized strings to score 1, got %v", got)
	}
	if matching.Similarity("Bong Joon-ho", "Bong Joon Ho") <= matching.Similarity("Bong Joon-ho", "Park Chan-wook") {
		t.Fatal("expected closer spelling to score higher")
	}
	if matching.Similarity("", "x") != 0 {
		t.Fatal("expected zero for blank input")
	}
}
