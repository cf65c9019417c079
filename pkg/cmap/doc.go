// Package cmap provides a concurrent string-keyed map split into independently
// locked shards.
//
// Keys are assigned to shards with a seeded murmur3 hash, so unrelated keys
// rarely contend for the same lock. respkv uses it to hold per-client rate
// limiters, which are looked up on every request from many connections.
//
// Usage:
//
//	m := cmap.New[*rate.Limiter]()
//	lim, _ := m.GetOrSet(ip, rate.NewLimiter(100, 100))
//
// All operations are safe for concurrent use. Iteration locks one shard at
// a time, so it does not observe a consistent snapshot of the whole map.
package cmap
