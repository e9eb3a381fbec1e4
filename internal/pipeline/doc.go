// Package pipeline orchestrates ingest, transform, and fetch over the
// artifact store and transform engine.
//
// The server holds no per-client session object; clients reconstruct their
// state from the ids they hold. Every transform produces a fresh derived id,
// and a failed transform never exposes partial output.
package pipeline
