// Package main hosts the voxpitch CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the daemon in the foreground, queries a
// running daemon's HTTP API for status and job history, and scaffolds
// configuration files. Heavy lifting lives in the internal packages; commands
// here stay declarative and focus on presentation.
package main
