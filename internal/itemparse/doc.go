// Package itemparse turns raw user input into the working list of extracted
// items.
//
// Three input modes are supported. Structured input is a JSON array parsed and
// validated locally; a combined "Title(Creator)" string is split on its
// trailing parenthetical. Text and URL input are delegated to the extraction
// collaborator, whose failure message is surfaced unchanged.
package itemparse
