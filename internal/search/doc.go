// Package search is the content-search collaborator: it maps a content type
// and query text onto the external providers that serve that type and returns
// their candidates as one page.
//
// Providers live in subpackages (tmdb, spotify, books, rawg) as plain API
// clients; the adapters here translate their records into
// content.MatchCandidate values. The Service adds a TTL result cache
// (go-cache) and a per-provider rate limiter (x/time/rate). An empty page is a
// valid answer. A search fails only when every provider for the type fails:
// ErrUnavailable when none could be reached, ErrQueryFailed when a provider
// answered with an error for this particular query.
package search
