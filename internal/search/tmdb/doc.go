// Package tmdb provides the minimal TMDB API client used to look up VIDEO
// candidates.
//
// It authenticates requests and exposes multi, movie, and TV search with a
// per-call language and page, plus a credits lookup that yields the director
// or series creator a search result does not carry. Options allow tests to
// supply custom HTTP clients without modifying production code.
package tmdb
