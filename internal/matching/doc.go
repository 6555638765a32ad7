// Package matching chooses the best external record for an extracted item.
//
// PickBest trusts the provider's rank order and only overrides it when a
// lower-ranked candidate's creator agrees with the item's creator. Agreement
// is substring containment in either direction on Unicode-normalized,
// lower-cased names, so "Rowling" and "J.K. Rowling" agree. RankByCreator
// applies the same test to reorder a manual search page without selecting
// anything, and Similarity gives a Jaro-Winkler score for display.
package matching
