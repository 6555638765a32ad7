// Package session holds the working set of a collection session and the
// transitions a UI layer drives it through.
//
// State is a plain value: the extracted items plus the selection, exclusion,
// collapse, and match-result collections keyed by list position. Its methods
// are synchronous transitions that keep those collections consistent
// (selection and exclusion are disjoint, every key is a valid position).
//
// Controller wraps a State with the three collaborator calls: ingest (parse or
// extract), match (batch search), and commit (persist then compact). Only one
// of them runs at a time; each either applies its whole result or leaves the
// state as it was. Commit is followed by a compaction pass that rebuilds every
// position-keyed collection against the renumbered list.
package session
