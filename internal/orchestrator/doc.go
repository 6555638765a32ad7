// Package orchestrator runs batch matching for a collection session.
//
// Every submitted item is searched twice, once by its localized title and once
// by its original title, and the two candidate lists are kept side by side on
// the resulting content.ProcessedItem. The default selection comes from
// matching.PickBest over the winning branch. Identical searches within one
// batch are issued once.
//
// A batch either completes or fails as a whole: per-item search problems
// degrade to empty branches, while an unreachable search service aborts with
// one services.ErrSearch error and nothing is returned.
package orchestrator
