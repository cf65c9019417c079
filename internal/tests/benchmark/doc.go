// Package benchmark holds cross-package benchmarks for the request path,
// the memory store and snapshot persistence.
//
//	go test -bench . -benchmem ./internal/tests/benchmark/
package benchmark
