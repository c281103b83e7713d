// Package sqlite provides a SQLite implementation of store.ProfileStore on
// the pure-Go modernc.org/sqlite driver. Every transaction starts with
// BEGIN IMMEDIATE, so a match commit holds the database writer lock from
// its first read to its conditional update.
package sqlite
