package content

import (
	"strings"
)

// Type enumerates the kinds of media a session can collect.
type Type string

const (
	TypeBook        Type = "BOOK"
	TypeVideo       Type = "VIDEO"
	TypeGame        Type = "GAME"
	TypeMusic       Type = "MUSIC"
	TypeCertificate Type = "CERTIFICATE"
)

var allTypes = []Type{
	TypeBook,
	TypeVideo,
	TypeGame,
	TypeMusic,
	TypeCertificate,
}

// AllTypes returns the supported content types in declaration order.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseType normalizes a raw type label. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseType(raw string) (Type, bool) {
	candidate := Type(strings.ToUpper(strings.TrimSpace(raw)))
	for _, t := range allTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether t is one of the supported content types.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// Status is the reading/watching workflow state stored with a committed record.
type Status string

const (
	StatusWant       Status = "WANT"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusDropped    Status = "DROPPED"
)

// DefaultStatus is applied to processed items unless the user picks another.
const DefaultStatus = StatusFinished

// NormalizeStatus upper-cases a status label and falls back to DefaultStatus
// when it is blank.
func NormalizeStatus(raw string) Status {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return DefaultStatus
	}
	return Status(value)
}

// MatchSource tags which branch produced the selected match of a ProcessedItem.
type MatchSource string

const (
	SourceLocalized MatchSource = "localized"
	SourceOriginal  MatchSource = "original"
	SourceManual    MatchSource = "manual"
)
