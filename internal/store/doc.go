// Package store owns the artifact directories and all naming within them.
//
// The filesystem is the only identity layer: an artifact's randomly generated
// name doubles as its public id, and anyone holding an id may fetch the bytes
// (a documented bearer-token trade-off, not an oversight). That places two
// responsibilities on this package that a database would normally cover —
// collision-free id generation (128-bit UUID space) and traversal-safe path
// resolution (a strict token grammar checked before any filesystem access).
//
// Writes are atomic: payloads land in dot-prefixed scratch files and are
// renamed into place only once fully durable. Artifacts are immutable after
// that rename; new transform parameters always mint new ids.
package store
