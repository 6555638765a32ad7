// Package content defines the records that flow through a collection session.
//
// ExtractedItem is one candidate piece of consumed media produced by the item
// parser. MatchCandidate is a record returned by an external content-search
// provider, and ProcessedItem holds the match-orchestration result for a single
// extracted item. The types carry no behaviour beyond normalization helpers so
// parsers, providers, and the session controller can share them freely.
package content
