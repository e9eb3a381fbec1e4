// Package daemon composes the long-running voxpitch process: it owns the
// artifact store, transform pipeline, HTTP API server, and retention
// sweeper, and guards against concurrent instances with a file lock.
package daemon
