package session_test

import (
	"testing"

	"mediashelf/internal/content"
	"mediashelf/internal/session"
)

func TestFinalizeSkipsIneligibleTargets(t *testing.T) {
	st := session.NewState(items("a", "b", "c", "d"), "")
	matched(st, 0, 1, 3)
	_ = st.ToggleSelect(1) // deselect; has a match but is not selected

	records, committed := st.Finalize([]int{3, 1, 2, 0, 0, 9, -1})
	if len(committed) != 2 || committed[0] != 0 || committed[1] != 3 {
		t.Fatalf("expected indices [0 3], got %v", committed)
	}
	if len(records) != 2 || records[0].Title != "a" || records[1].Title != "d" {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestBuildRecordTitleAndCreatorRules(t *testing.T) {
	rating := 4.0
	m := content.MatchCandidate{ExternalID: "x1", ExternalSource: "tmdb", Title: "기생충", Creator: "Bong Joon-ho", CoverImageURL: "https://img", Metadata: map[string]any{"year": "2019"}}
	item := content.ExtractedItem{ID: "id-1", Type: content.TypeVideo, Title: "Parasite", TitleLocalized: "기생충", Rating: &rating, Review: "wow", SourceURL: "http://x"}
	record := session.BuildRecord(item, content.ProcessedItem{SelectedMatch: &m, Status: content.StatusWant})

	if record.Title != "기생충" || record.OriginalTitle != "Parasite" {
		t.Fatalf("expected localized title with original preserved, got %q / %q", record.Title, record.OriginalTitle)
	}
	if record.Creator != "Bong Joon-ho" {
		t.Fatalf("expected match creator fallback, got %q", record.Creator)
	}
	if record.ItemRef != "id-1" || record.ExternalID != "x1" || record.ExternalSource != "tmdb" || record.Status != content.StatusWant {
		t.Fatalf("unexpected record %#v", record)
	}
	if record.Rating == nil || *record.Rating != 4 || record.Review != "wow" || record.Metadata["year"] != "2019" {
		t.Fatalf("unexpected record details %#v", record)
	}

	item.Creator = "봉준호"
	item.TitleLocalized = ""
	record = session.BuildRecord(item, content.ProcessedItem{SelectedMatch: &m})
	if record.Creator != "봉준호" || record.Title != "Parasite" || record.OriginalTitle != "" {
		t.Fatalf("expected item creator and no side title, got %#v", record)
	}
	if record.Status != content.StatusFinished {
		t.Fatalf("expected default status, got %q", record.Status)
	}
}

// Four items, index 3 excluded, indices 0 and 2 committed: old 1 and 3 survive
// as new 0 and 1, and the exclusion follows old 3 to new 1.
func TestCompactRekeysSurvivors(t *testing.T) {
	st := session.NewState(items("a", "b", "c", "d"), "")
	matched(st, 0, 1, 2, 3)
	_ = st.ToggleExclude(3)
	_ = st.ToggleCollapse(1)

	records, committed := st.Finalize([]int{0, 2})
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	st.Compact(committed)

	if st.Len() != 2 || st.Items[0].Title != "b" || st.Items[1].Title != "d" {
		t.Fatalf("unexpected survivors %#v", st.Items)
	}
	if !st.Excluded.Has(1) || len(st.Excluded) != 1 {
		t.Fatalf("expected exclusion re-keyed to 1, got %v", st.Excluded)
	}
	if !st.Collapsed.Has(0) || !st.Collapsed.Has(1) || len(st.Collapsed) != 2 {
		t.Fatalf("expected collapsed {0,1}, got %v", st.Collapsed)
	}
	if len(st.Selected) != 0 {
		t.Fatalf("expected selection cleared, got %v", st.Selected)
	}
	if len(st.Processed) != 2 || st.Processed[0].SelectedMatch.ExternalID != "b" || st.Processed[1].SelectedMatch.ExternalID != "d" {
		t.Fatalf("expected processed re-keyed, got %#v", st.Processed)
	}
	assertInvariants(t, st)

	// Exclusion memory followed the item: restoring new index 1 re-selects it.
	if err := st.ToggleExclude(1); err != nil {
		t.Fatalf("ToggleExclude: %v", err)
	}
	if st.Excluded.Has(1) || !st.Selected.Has(1) {
		t.Fatalf("expected restored item selected, got sel=%v exc=%v", st.Selected, st.Excluded)
	}
}

func TestCompactNonContiguousKeepsIndicesDense(t *testing.T) {
	titles := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	st := session.NewState(items(titles...), "")
	matched(st, 0, 1, 2, 3, 4, 5, 6, 7)
	_ = st.ToggleExclude(6)
	_ = st.ToggleExclude(2)

	_, committed := st.Finalize([]int{1, 4, 7})
	st.Compact(committed)

	wantTitles := []string{"a", "c", "d", "f", "g"}
	if st.Len() != len(wantTitles) {
		t.Fatalf("expected %d survivors, got %d", len(wantTitles), st.Len())
	}
	for i, title := range wantTitles {
		if st.Items[i].Title != title {
			t.Fatalf("index %d: want %q, got %q", i, title, st.Items[i].Title)
		}
		if st.Processed[i].SelectedMatch.ExternalID != title {
			t.Fatalf("processed[%d] drifted: %#v", i, st.Processed[i].SelectedMatch)
		}
	}
	// Old excluded 2 and 6 are now 1 and 4.
	if !st.Excluded.Has(1) || !st.Excluded.Has(4) || len(st.Excluded) != 2 {
		t.Fatalf("unexpected exclusions %v", st.Excluded)
	}
	assertInvariants(t, st)
}
