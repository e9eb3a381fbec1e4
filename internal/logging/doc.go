// Package logging builds the slog loggers used by the daemon and CLI.
//
// Two formats are supported: a human console format (colorized when the
// output is a terminal) and JSON for machine consumption. Helpers mirror the
// slog attr constructors so call sites stay terse, and WithContext threads
// request identifiers from context into handler output.
package logging
