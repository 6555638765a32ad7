// Package library persists committed collection records in SQLite.
//
// It is the persistence collaborator behind a session commit: Commit writes a
// batch of finalized records for one subject inside a single transaction, so
// a failure leaves nothing behind. Records already filed for the subject under
// the same provider id are skipped rather than duplicated, which is why the
// saved count can be lower than the batch size.
//
// Writers also take an advisory file lock next to the database so two CLI
// sessions cannot interleave commits. Schema changes go in a new numbered file
// under migrations/.
package library
