package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusConfig configures the Prometheus exporter.
type PrometheusConfig struct {
	// Namespace prefixes every metric name; defaults to "polycache".
	Namespace string

	// Registry to register collectors with; defaults to the global registerer.
	Registry prometheus.Registerer

	// ConstLabels are attached to every metric, e.g. {"cache_name": "users"}.
	ConstLabels prometheus.Labels
}

// PrometheusExporter publishes stats snapshots as Prometheus gauges. Counters
// are exported as gauges because snapshots carry absolute values, not deltas.
type PrometheusExporter struct {
	registry prometheus.Registerer

	keys          prometheus.Gauge
	sizeBytes     prometheus.Gauge
	maxSizeBytes  prometheus.Gauge
	hitRate       prometheus.Gauge
	hits          prometheus.Gauge
	misses        prometheus.Gauge
	evictions     prometheus.Gauge
	invalidations prometheus.Gauge
}

var _ Exporter = (*PrometheusExporter)(nil)

func NewPrometheusExporter(cfg PrometheusConfig) (*PrometheusExporter, error) {
	ns := cfg.Namespace
	if ns == "" {
		ns = "polycache"
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		})
	}

	e := &PrometheusExporter{
		registry:      reg,
		keys:          gauge("keys_count", "Number of entries tracked by the cache."),
		sizeBytes:     gauge("size_bytes", "Sum of tracked payload sizes in bytes."),
		maxSizeBytes:  gauge("max_size_bytes", "Configured storage byte budget."),
		hitRate:       gauge("hit_rate", "Hit percentage over all reads."),
		hits:          gauge("hits_total", "Total cache hits."),
		misses:        gauge("misses_total", "Total cache misses."),
		evictions:     gauge("evictions_total", "Total capacity evictions."),
		invalidations: gauge("invalidations_total", "Total explicit invalidations."),
	}

	for _, col := range e.collectors() {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return e, nil
}

func (e *PrometheusExporter) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		e.keys, e.sizeBytes, e.maxSizeBytes, e.hitRate,
		e.hits, e.misses, e.evictions, e.invalidations,
	}
}

func (e *PrometheusExporter) ExportStats(stats Stats) error {
	e.keys.Set(float64(stats.KeyCount()))
	e.sizeBytes.Set(float64(stats.SizeBytes()))
	e.maxSizeBytes.Set(float64(stats.MaxSizeBytes()))
	e.hitRate.Set(stats.HitRate())
	e.hits.Set(float64(stats.HitCount()))
	e.misses.Set(float64(stats.MissCount()))
	e.evictions.Set(float64(stats.EvictionCount()))
	e.invalidations.Set(float64(stats.InvalidationCount()))
	return nil
}

// Close unregisters the exporter's collectors so a registry can be reused.
func (e *PrometheusExporter) Close() error {
	for _, col := range e.collectors() {
		e.registry.Unregister(col)
	}
	return nil
}
