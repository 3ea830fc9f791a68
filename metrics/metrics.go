// Package metrics exposes the process's running state as Prometheus
// collectors: LSDB size per scope, neighbor-state gauges, and flood
// counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source is queried at scrape time so Collector never has to push updates
// itself; live process state is read inside Collect.
type Source interface {
	// LSDBSize returns the number of installed LSAs per (scope, type)
	// pair, keyed by a human-readable scope label ("link:eth0",
	// "area:0.0.0.1", "as") and LSA type name.
	LSDBSize() map[[2]string]int

	// NeighborStates returns, for every known neighbor, a label set
	// (interface, router-id) and its current state name.
	NeighborStates() map[[2]string]string

	// FloodCounters returns cumulative flood-engine counters keyed by
	// name ("installed", "dropped_checksum", "badlsreq",
	// "pushback_fired", "pushback_canceled", ...).
	FloodCounters() map[string]uint64
}

// Collector implements prometheus.Collector over a Source.
type Collector struct {
	src Source

	lsdbSize    *prometheus.Desc
	neighborUp  *prometheus.Desc
	floodTotal  *prometheus.Desc
}

// New creates a Collector that scrapes src at every Collect call.
func New(src Source) *Collector {
	return &Collector{
		src: src,
		lsdbSize: prometheus.NewDesc(
			"ospf6_lsdb_size",
			"Number of installed LSAs per scope and type.",
			[]string{"scope", "lsa_type"}, nil,
		),
		neighborUp: prometheus.NewDesc(
			"ospf6_neighbor_state",
			"Current neighbor state, one gauge per (interface, router_id, state) triple set to 1 for the active state.",
			[]string{"interface", "router_id", "state"}, nil,
		),
		floodTotal: prometheus.NewDesc(
			"ospf6_flood_events_total",
			"Cumulative flooding engine events by kind.",
			[]string{"kind"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lsdbSize
	ch <- c.neighborUp
	ch <- c.floodTotal
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for k, n := range c.src.LSDBSize() {
		ch <- prometheus.MustNewConstMetric(c.lsdbSize, prometheus.GaugeValue, float64(n), k[0], k[1])
	}
	for k, state := range c.src.NeighborStates() {
		ch <- prometheus.MustNewConstMetric(c.neighborUp, prometheus.GaugeValue, 1, k[0], k[1], state)
	}
	for kind, count := range c.src.FloodCounters() {
		ch <- prometheus.MustNewConstMetric(c.floodTotal, prometheus.CounterValue, float64(count), kind)
	}
}
