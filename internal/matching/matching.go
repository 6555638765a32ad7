package matching

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"mediashelf/internal/content"
)

var lower = cases.Lower(language.Und)

// Normalize trims, NFC-normalizes, and lower-cases a name so that composed and
// decomposed Hangul or accented Latin compare equal.
func Normalize(s string) string {
	return lower.String(norm.NFC.String(strings.TrimSpace(s)))
}

// CreatorMatches reports whether a candidate creator agrees with the target.
// Either normalized string containing the other counts, so a blank candidate
// creator matches any target. A blank target matches nothing.
func CreatorMatches(candidateCreator, target string) bool {
	t := Normalize(target)
	if t == "" {
		return false
	}
	c := Normalize(candidateCreator)
	return strings.Contains(c, t) || strings.Contains(t, c)
}

// PickBest returns the first candidate whose creator matches targetCreator,
// falling back to the provider's top result. It returns nil only when there
// are no candidates. The returned value is a copy.
func PickBest(candidates []content.MatchCandidate, targetCreator string) *content.MatchCandidate {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	if strings.TrimSpace(targetCreator) != "" {
		for _, candidate := range candidates {
			if CreatorMatches(candidate.Creator, targetCreator) {
				best = candidate
				break
			}
		}
	}
	picked := best.Clone()
	return &picked
}

// RankByCreator moves creator-matching candidates to the front, keeping the
// provider order within both groups. The input slice is not modified.
func RankByCreator(candidates []content.MatchCandidate, targetCreator string) []content.MatchCandidate {
	out := make([]content.MatchCandidate, 0, len(candidates))
	if strings.TrimSpace(targetCreator) == "" {
		return append(out, candidates...)
	}
	var rest []content.MatchCandidate
	for _, candidate := range candidates {
		if CreatorMatches(candidate.Creator, targetCreator) {
			out = append(out, candidate)
		} else {
			rest = append(rest, candidate)
		}
	}
	return append(out, rest...)
}

// Similarity scores two strings between 0 and 1 using Jaro-Winkler over their
// normalized forms. It is for display only and never drives selection.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	return strutil.Similarity(na, nb, metrics.NewJaroWinkler())
}
