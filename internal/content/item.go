package content

import (
	"strings"

	"github.com/google/uuid"
)

// ExtractedItem is one candidate piece of consumed content. Its position in the
// session working list is its index; ID stays stable for the item's lifetime.
type ExtractedItem struct {
	ID               string   `json:"id"`
	Type             Type     `json:"type"`
	Title            string   `json:"title"`
	TitleLocalized   string   `json:"titleLocalized,omitempty"`
	Creator          string   `json:"creator,omitempty"`
	CreatorLocalized string   `json:"creatorLocalized,omitempty"`
	Review           string   `json:"review,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	SourceURL        string   `json:"sourceUrl,omitempty"`
}

// NewItemID returns a fresh opaque identifier for an extracted item.
func NewItemID() string {
	return uuid.NewString()
}

// EnsureID assigns an identifier when the item does not carry one yet.
func (i *ExtractedItem) EnsureID() {
	if strings.TrimSpace(i.ID) == "" {
		i.ID = NewItemID()
	}
}

// LocalizedQuery returns the title used for the localized search branch.
func (i ExtractedItem) LocalizedQuery() string {
	if title := strings.TrimSpace(i.TitleLocalized); title != "" {
		return title
	}
	return strings.TrimSpace(i.Title)
}

// OriginalQuery returns the title used for the original-language search branch.
func (i ExtractedItem) OriginalQuery() string {
	return strings.TrimSpace(i.Title)
}

// DisplayTitle prefers the localized title.
func (i ExtractedItem) DisplayTitle() string {
	return i.LocalizedQuery()
}

// Clone returns a copy that shares no pointers with i.
func (i ExtractedItem) Clone() ExtractedItem {
	out := i
	if i.Rating != nil {
		rating := *i.Rating
		out.Rating = &rating
	}
	return out
}

// NormalizeRating clamps a rating to 0–5 and rounds it to the nearest half
// step. Nil stays nil.
func NormalizeRating(rating *float64) *float64 {
	if rating == nil {
		return nil
	}
	value := *rating
	if value < 0 {
		value = 0
	}
	if value > 5 {
		value = 5
	}
	rounded := float64(int(value*2+0.5)) / 2
	return &rounded
}
