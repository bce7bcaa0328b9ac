// Package storage is the structured store behind the session cache: one JSON
// document on disk holding arbitrary top-level entries.
//
// The document is never decoded into a fixed schema. A Document keeps every
// entry as raw JSON and only the accessors used by callers decode individual
// values, so entries owned by a peer client survive every write unchanged.
//
// Every mutation goes through FileStore.Update, which re-reads the file,
// applies the caller's function, and atomically replaces the file. Callers
// must not hold a Document across two Update calls.
package storage
