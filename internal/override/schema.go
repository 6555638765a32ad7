package override

import (
	"fmt"
	"strings"

	"mediashelf/internal/content"
)

// Column is one display column of a manual search result table. Key is
// "title", "creator", or a candidate metadata key.
type Column struct {
	Key   string
	Label string
}

var columnSchema = map[content.Type][]Column{
	content.TypeBook: {
		{Key: "title", Label: "Title"},
		{Key: "creator", Label: "Author"},
		{Key: "publisher", Label: "Publisher"},
		{Key: "publishedDate", Label: "Published"},
		{Key: "isbn", Label: "ISBN"},
	},
	content.TypeVideo: {
		{Key: "title", Label: "Title"},
		{Key: "creator", Label: "Director"},
		{Key: "mediaType", Label: "Kind"},
		{Key: "year", Label: "Year"},
	},
	content.TypeGame: {
		{Key: "title", Label: "Title"},
		{Key: "creator", Label: "Developer"},
		{Key: "released", Label: "Released"},
		{Key: "platforms", Label: "Platforms"},
	},
	content.TypeMusic: {
		{Key: "title", Label: "Title"},
		{Key: "creator", Label: "Artist"},
		{Key: "albumType", Label: "Kind"},
		{Key: "releaseDate", Label: "Released"},
	},
	content.TypeCertificate: {
		{Key: "title", Label: "Title"},
		{Key: "creator", Label: "Issuer"},
	},
}

// Columns returns the display columns for t. Unknown types get title and
// creator only.
func Columns(t content.Type) []Column {
	cols, ok := columnSchema[t]
	if !ok {
		cols = []Column{{Key: "title", Label: "Title"}, {Key: "creator", Label: "Creator"}}
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return out
}

// Summarize renders c as one cell per column of t.
func Summarize(t content.Type, c content.MatchCandidate) []string {
	cols := Columns(t)
	cells := make([]string, len(cols))
	for i, col := range cols {
		switch col.Key {
		case "title":
			cells[i] = c.Title
		case "creator":
			cells[i] = c.Creator
		default:
			cells[i] = formatMetadata(c.Metadata[col.Key])
		}
	}
	return cells
}

func formatMetadata(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, part := range v {
			if s := formatMetadata(part); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.1f", v)
	case int:
		if v == 0 {
			return ""
		}
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprint(v)
	}
}
