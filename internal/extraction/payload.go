package extraction

import (
	"encoding/json"
	"strconv"
	"strings"

	"mediashelf/internal/content"
)

type llmPayload struct {
	Items []llmItem `json:"items"`
	Error string    `json:"error"`
}

type llmItem struct {
	Type             string          `json:"type"`
	Title            string          `json:"title"`
	TitleLocalized   string          `json:"titleLocalized"`
	Creator          string          `json:"creator"`
	CreatorLocalized string          `json:"creatorLocalized"`
	Review           string          `json:"review"`
	Rating           json.RawMessage `json:"rating"`
	SourceURL        string          `json:"sourceUrl"`
}

// normalize converts model output into extracted items, dropping entries
// without a known type or any title.
func (p llmPayload) normalize() ([]content.ExtractedItem, int) {
	items := make([]content.ExtractedItem, 0, len(p.Items))
	dropped := 0
	for _, raw := range p.Items {
		t, ok := content.ParseType(raw.Type)
		title := strings.TrimSpace(raw.Title)
		localized := strings.TrimSpace(raw.TitleLocalized)
		if !ok || (title == "" && localized == "") {
			dropped++
			continue
		}
		if title == "" {
			title = localized
		}
		if localized == title {
			localized = ""
		}
		item := content.ExtractedItem{
			ID:               content.NewItemID(),
			Type:             t,
			Title:            title,
			TitleLocalized:   localized,
			Creator:          strings.TrimSpace(raw.Creator),
			CreatorLocalized: strings.TrimSpace(raw.CreatorLocalized),
			Review:           strings.TrimSpace(raw.Review),
			Rating:           content.NormalizeRating(parseRating(raw.Rating)),
			SourceURL:        strings.TrimSpace(raw.SourceURL),
		}
		items = append(items, item)
	}
	return items, dropped
}

// parseRating accepts a JSON number or a numeric string.
func parseRating(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return &value
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	return &value
}
