package metric

import "github.com/prometheus/client_golang/prometheus"

// KeyspaceCollector reports the number of live entries in the store each
// time Prometheus scrapes.
type KeyspaceCollector struct {
	size func() int
	desc *prometheus.Desc
}

// NewKeyspaceCollector creates a collector that calls size on every scrape.
func NewKeyspaceCollector(size func() int) *KeyspaceCollector {
	return &KeyspaceCollector{
		size: size,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Entries currently held in the store, including expired ones not yet removed.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *KeyspaceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *KeyspaceCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.size()))
}

// WatchKeyspace registers a KeyspaceCollector on r.
func (r *Registry) WatchKeyspace(size func() int) error {
	if r == nil {
		return nil
	}
	return r.registry.Register(NewKeyspaceCollector(size))
}
