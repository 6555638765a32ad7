package session

import (
	"sort"
	"strings"

	"mediashelf/internal/content"
	"mediashelf/internal/library"
)

// Finalize picks the commit-eligible targets, those that are selected and
// have a selected match, and builds their records. Ineligible, duplicate, or
// out-of-range targets are skipped silently. The returned indices are
// ascending and line up with the records.
func (s *State) Finalize(targets []int) ([]library.Record, []int) {
	seen := make(map[int]struct{}, len(targets))
	eligible := make([]int, 0, len(targets))
	for _, i := range targets {
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		if i < 0 || i >= len(s.Items) || !s.Selected.Has(i) {
			continue
		}
		processed, ok := s.Processed[i]
		if !ok || processed.SelectedMatch == nil {
			continue
		}
		eligible = append(eligible, i)
	}
	sort.Ints(eligible)

	records := make([]library.Record, 0, len(eligible))
	for _, i := range eligible {
		records = append(records, BuildRecord(s.Items[i], s.Processed[i]))
	}
	return records, eligible
}

// BuildRecord turns an item and its match into a persistence record. The
// committed title is the localized title when present; the creator is the
// item's own when present, else the match's. The original title is kept
// alongside when it differs from the committed one.
func BuildRecord(item content.ExtractedItem, processed content.ProcessedItem) library.Record {
	match := processed.SelectedMatch
	title := item.LocalizedQuery()
	creator := strings.TrimSpace(item.Creator)
	if creator == "" && match != nil {
		creator = match.Creator
	}
	status := processed.Status
	if status == "" {
		status = content.DefaultStatus
	}
	record := library.Record{
		ItemRef:   item.ID,
		Type:      item.Type,
		Title:     title,
		Creator:   creator,
		Review:    item.Review,
		Status:    status,
		SourceURL: item.SourceURL,
	}
	if original := strings.TrimSpace(item.Title); original != "" && original != title {
		record.OriginalTitle = original
	}
	if item.Rating != nil {
		rating := *item.Rating
		record.Rating = &rating
	}
	if match != nil {
		clone := match.Clone()
		record.ExternalID = clone.ExternalID
		record.ExternalSource = clone.ExternalSource
		record.CoverImageURL = clone.CoverImageURL
		record.Metadata = clone.Metadata
	}
	return record
}

// Compact removes the committed positions and renumbers everything that is
// left. Every index-keyed collection is rebuilt from scratch against the new
// numbering; selection is cleared.
func (s *State) Compact(committed []int) {
	removed := NewIndexSet(committed...)
	remap := make(map[int]int, len(s.Items))
	kept := make([]content.ExtractedItem, 0, len(s.Items))
	for old, item := range s.Items {
		if removed.Has(old) {
			continue
		}
		remap[old] = len(kept)
		kept = append(kept, item)
	}

	rebuild := func(set IndexSet) IndexSet {
		out := make(IndexSet, len(set))
		for old := range set {
			if idx, ok := remap[old]; ok {
				out.add(idx)
			}
		}
		return out
	}

	processed := make(map[int]content.ProcessedItem, len(s.Processed))
	for old, value := range s.Processed {
		if idx, ok := remap[old]; ok {
			processed[idx] = value
		}
	}
	memory := make(map[int]exclusionMemory, len(s.memory))
	for old, value := range s.memory {
		if idx, ok := remap[old]; ok {
			memory[idx] = value
		}
	}

	s.Items = kept
	s.Selected = IndexSet{}
	s.Excluded = rebuild(s.Excluded)
	s.Collapsed = rebuild(s.Collapsed)
	s.Processed = processed
	s.memory = memory
}
