// Package main hosts the mediashelf CLI entrypoint and command graph.
//
// The Cobra command tree drives a collection session end to end: items are
// ingested from a structured file, free text, or a URL, optionally matched
// against the configured search providers, and committed to the local
// library. Manual searches and library listings are exposed as standalone
// commands so a reviewer can pick a match by hand.
//
// Keep this package lean: behaviour belongs in the internal packages, and the
// commands here only resolve configuration, wire collaborators, and render
// results as tables or JSON.
package main
