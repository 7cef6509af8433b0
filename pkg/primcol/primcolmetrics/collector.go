// Package primcolmetrics exposes a hashcore table's Stats as Prometheus
// gauges, for embedders who want table-shape visibility (load factor, max
// chain length) without wiring their own scrape loop.
package primcolmetrics

import (
	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsFunc returns a fresh Stats snapshot, typically a container's own
// Stats() method.
type StatsFunc func() hashcore.Stats

// Collector adapts a StatsFunc into a prometheus.Collector. It is stateless
// between scrapes: every Collect call re-derives gauges from a fresh
// snapshot, so it is safe to register once and query repeatedly even as
// the underlying table mutates.
type Collector struct {
	snapshot StatsFunc

	size       *prometheus.Desc
	capacity   *prometheus.Desc
	loadFactor *prometheus.Desc
	maxChain   *prometheus.Desc
}

// NewCollector builds a Collector labeled with name (e.g. the container's
// field or variable name) for disambiguation when several tables are
// registered against the same registry.
func NewCollector(name string, snapshot StatsFunc) *Collector {
	labels := prometheus.Labels{"container": name}
	return &Collector{
		snapshot: snapshot,
		size: prometheus.NewDesc("primcol_table_size", "Number of live entries.",
			nil, labels),
		capacity: prometheus.NewDesc("primcol_table_capacity", "Physical capacity of the backing arrays.",
			nil, labels),
		loadFactor: prometheus.NewDesc("primcol_table_load_factor", "size / capacity.",
			nil, labels),
		maxChain: prometheus.NewDesc("primcol_table_max_chain_length", "Longest bucket chain currently in the table.",
			nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.capacity
	ch <- c.loadFactor
	ch <- c.maxChain
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, s.LoadFactor())
	ch <- prometheus.MustNewConstMetric(c.maxChain, prometheus.GaugeValue, float64(s.MaxChainLength))
}
