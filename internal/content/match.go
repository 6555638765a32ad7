package content

// MatchCandidate is one externally-sourced record considered for an item.
type MatchCandidate struct {
	ExternalID     string         `json:"externalId"`
	ExternalSource string         `json:"externalSource"`
	Title          string         `json:"title"`
	Creator        string         `json:"creator"`
	CoverImageURL  string         `json:"coverImageUrl,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Key identifies a candidate across providers.
func (c MatchCandidate) Key() string {
	return c.ExternalSource + "\x00" + c.ExternalID
}

// Clone copies the candidate including its metadata map.
func (c MatchCandidate) Clone() MatchCandidate {
	out := c
	if c.Metadata != nil {
		out.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// ProcessedItem is the match-orchestration result for one extracted item.
type ProcessedItem struct {
	LocalizedCandidates []MatchCandidate `json:"localizedCandidates"`
	OriginalCandidates  []MatchCandidate `json:"originalCandidates"`
	SelectedMatch       *MatchCandidate  `json:"selectedMatch"`
	MatchSource         MatchSource      `json:"matchSource"`
	Status              Status           `json:"status"`
	LastSearchQuery     string           `json:"lastSearchQuery"`
}

// Candidates merges both branches, localized first, dropping duplicates that
// share an external source and id.
func (p ProcessedItem) Candidates() []MatchCandidate {
	seen := make(map[string]struct{}, len(p.LocalizedCandidates)+len(p.OriginalCandidates))
	merged := make([]MatchCandidate, 0, len(p.LocalizedCandidates)+len(p.OriginalCandidates))
	for _, list := range [][]MatchCandidate{p.LocalizedCandidates, p.OriginalCandidates} {
		for _, candidate := range list {
			key := candidate.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, candidate)
		}
	}
	return merged
}

// HasMatch reports whether a match is currently selected.
func (p ProcessedItem) HasMatch() bool {
	return p.SelectedMatch != nil
}

// Clone deep-copies the processed item.
func (p ProcessedItem) Clone() ProcessedItem {
	out := p
	out.LocalizedCandidates = cloneCandidates(p.LocalizedCandidates)
	out.OriginalCandidates = cloneCandidates(p.OriginalCandidates)
	if p.SelectedMatch != nil {
		selected := p.SelectedMatch.Clone()
		out.SelectedMatch = &selected
	}
	return out
}

func cloneCandidates(in []MatchCandidate) []MatchCandidate {
	if in == nil {
		return nil
	}
	out := make([]MatchCandidate, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
