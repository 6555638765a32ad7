package library

import (
	"time"

	"mediashelf/internal/content"
)

// Record is one finalized item handed to Commit.
type Record struct {
	// ItemRef is the session item id the record was built from.
	ItemRef string
	Type    content.Type
	Title   string
	// OriginalTitle is set only when it differs from Title.
	OriginalTitle  string
	Creator        string
	Review         string
	Rating         *float64
	Status         content.Status
	SourceURL      string
	ExternalID     string
	ExternalSource string
	CoverImageURL  string
	Metadata       map[string]any
}

// Entry is a stored record.
type Entry struct {
	Record
	ID        string
	SubjectID string
	OriginURL string
	CreatedAt time.Time
}
