// Package metric provides Prometheus metrics for respkv.
//
//   - prometheus.go: the registry, its instruments and the /metrics handler
//   - collector.go: a collector that samples the keyspace size on scrape
//
// Every recording method is safe to call on a nil *Registry so that
// components can run without metrics in tests.
package metric
