package itemparse

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"mediashelf/internal/content"
)

// trailingCreator matches "Title(Creator)" with the parenthetical anchored to
// the end of the string.
var trailingCreator = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)

// SplitTitleCreator separates a trailing parenthetical from a combined title.
// When there is none, or the title part would be empty, the input is returned
// unchanged with an empty creator.
func SplitTitleCreator(combined string) (title, creator string) {
	combined = strings.TrimSpace(combined)
	match := trailingCreator.FindStringSubmatch(combined)
	if match == nil {
		return combined, ""
	}
	title = strings.TrimSpace(match[1])
	if title == "" {
		return combined, ""
	}
	return title, strings.TrimSpace(match[2])
}

type structuredItem struct {
	Type             *string         `json:"type"`
	Title            string          `json:"title"`
	TitleLocalized   string          `json:"titleLocalized"`
	Creator          string          `json:"creator"`
	CreatorLocalized string          `json:"creatorLocalized"`
	Body             string          `json:"body"`
	Review           string          `json:"review"`
	Source           string          `json:"source"`
	SourceURL        string          `json:"sourceUrl"`
	Rating           json.RawMessage `json:"rating"`
}

// ParseStructured parses a JSON array of item objects. Every element must
// carry a type from the supported set; all offending positions are reported
// together. No partial result is returned on failure. An empty array is a
// valid, empty list.
func ParseStructured(payload []byte) ([]content.ExtractedItem, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ValidationError{Reason: "input must be a JSON array"}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, &ValidationError{Reason: "input must be a JSON array: " + err.Error()}
	}
	items := make([]content.ExtractedItem, 0, len(elements))
	var invalid []int
	for i, raw := range elements {
		item, ok := parseElement(raw)
		if !ok {
			invalid = append(invalid, i+1)
			continue
		}
		items = append(items, item)
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Reason: "missing or unsupported content type", Positions: invalid}
	}
	return items, nil
}

func parseElement(raw json.RawMessage) (content.ExtractedItem, bool) {
	var element structuredItem
	if err := json.Unmarshal(raw, &element); err != nil || element.Type == nil {
		return content.ExtractedItem{}, false
	}
	t, ok := content.ParseType(*element.Type)
	if !ok {
		return content.ExtractedItem{}, false
	}

	title := strings.TrimSpace(element.Title)
	creator := strings.TrimSpace(element.Creator)
	if creator == "" {
		title, creator = SplitTitleCreator(title)
	}
	item := content.ExtractedItem{
		ID:               content.NewItemID(),
		Type:             t,
		Title:            title,
		TitleLocalized:   strings.TrimSpace(element.TitleLocalized),
		Creator:          creator,
		CreatorLocalized: strings.TrimSpace(element.CreatorLocalized),
		Review:           strings.TrimSpace(firstNonEmpty(element.Review, element.Body)),
		SourceURL:        strings.TrimSpace(firstNonEmpty(element.SourceURL, element.Source)),
		Rating:           content.NormalizeRating(decodeRating(element.Rating)),
	}
	return item, true
}

func decodeRating(raw json.RawMessage) *float64 {
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
	parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
