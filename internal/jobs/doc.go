// Package jobs persists a journal of transform invocations in SQLite.
//
// The journal exists for diagnostics and status output only. It carries no
// identity the filesystem does not already hold; deleting the database loses
// nothing but history.
package jobs
