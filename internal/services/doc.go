// Package services defines the shared error taxonomy and request-scoped
// context helpers used across the pipeline.
//
// Errors are tagged with sentinel markers (validation, not-found, external
// tool, timeout, transient) so the HTTP layer can classify them without
// string matching, and so dependency diagnostics never leak to clients.
package services
