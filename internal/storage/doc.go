// Package storage persists the in-memory keyspace to disk.
//
// Snapshots are opt-in. A Snapshotter writes every live entry into a Badger
// database on save and replays it into the memory store at startup. Entry
// values are stored as an 8-byte big-endian expiry in Unix milliseconds
// (0 for none) followed by the value bytes; expiring entries also carry a
// Badger TTL so stale data is never returned.
//
// Each save writes a fresh generation of keys and then moves a head key to
// it in one transaction. Older generations are deleted afterwards, so a
// crash mid-save leaves the previous snapshot intact.
package storage
