// Package memory provides the in-memory key-value store for respkv.
//
// Store is a plain map from key to Entry and performs no locking of its
// own. Shared wraps a single Store behind one mutex and is the handle
// passed to every connection. Each Shared method holds the lock for
// exactly one Store operation.
//
// Expiry is lazy: Get is the authoritative check and deletes an expired
// entry when it sees one. Sweeper optionally purges expired entries on an
// interval; it only reclaims memory and never changes what Get returns.
package memory
