// Package services defines shared utilities consumed by the collection pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, working-list positions, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so validation, extraction,
//     search, and commit failures can be classified with errors.Is.
//   - UserMessage, which collapses an error chain into the single line a
//     person sees when an operation fails.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the pipeline.
package services
