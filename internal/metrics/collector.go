// Package metrics exports key registry state to Prometheus.
package metrics

import (
	"math/bits"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/smckit/smc"
)

const namespace = "smckit"

// Collector reads registry state at scrape time.
type Collector struct {
	store *smc.Store

	keys      *prometheus.Desc
	provided  *prometheus.Desc
	slotsUsed *prometheus.Desc
	fanNumber *prometheus.Desc
}

// NewCollector returns a Collector over s. Register it with a
// prometheus.Registerer.
func NewCollector(s *smc.Store) *Collector {
	return &Collector{
		store: s,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "keys"),
			"Number of registered keys, counters included.",
			nil, nil),
		provided: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "registry", "provided_keys"),
			"Number of keys backed by a provider, by provider.",
			[]string{"provider"}, nil),
		slotsUsed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "slots", "occupied"),
			"Occupied slots by allocator.",
			[]string{"allocator"}, nil),
		fanNumber: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "slots", "fan_number"),
			"Value published in FNum: highest occupied fan slot plus one.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.provided
	ch <- c.slotsUsed
	ch <- c.fanNumber
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Keys()
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(snap.Len()))

	byProvider := make(map[string]int)
	for _, k := range snap.All() {
		if info := k.Meta(); info.IsProvided() {
			byProvider[info.Provider]++
		}
	}
	for name, n := range byProvider {
		ch <- prometheus.MustNewConstMetric(c.provided, prometheus.GaugeValue, float64(n), name)
	}

	fans, gpus := c.store.FanSlots(), c.store.GPUSlots()
	ch <- prometheus.MustNewConstMetric(c.slotsUsed, prometheus.GaugeValue, float64(bits.OnesCount16(fans)), "fan")
	ch <- prometheus.MustNewConstMetric(c.slotsUsed, prometheus.GaugeValue, float64(bits.OnesCount16(gpus)), "gpu")
	ch <- prometheus.MustNewConstMetric(c.fanNumber, prometheus.GaugeValue, float64(bits.Len16(fans)))
}
