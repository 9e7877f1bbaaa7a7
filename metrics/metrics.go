// Package metrics exports cache statistics to external monitoring systems.
//
// The cache pushes snapshots through the Exporter interface; implementations
// included here are Prometheus, NoOp (the default), and Multi (fan-out).
package metrics

// Stats is the read-only view of cache statistics an exporter consumes.
type Stats interface {
	KeyCount() int64
	SizeBytes() int64
	MaxSizeBytes() int64
	HitCount() int64
	MissCount() int64
	EvictionCount() int64
	InvalidationCount() int64
	HitRate() float64
	Policy() string
}

// Exporter receives statistics snapshots.
type Exporter interface {
	ExportStats(stats Stats) error
	Close() error
}

// NoOpExporter discards everything.
type NoOpExporter struct{}

func NewNoOpExporter() *NoOpExporter { return &NoOpExporter{} }

func (*NoOpExporter) ExportStats(Stats) error { return nil }
func (*NoOpExporter) Close() error            { return nil }

// MultiExporter fans a snapshot out to several exporters. All exporters are
// called even when one fails; the first error is returned.
type MultiExporter struct {
	exporters []Exporter
}

func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	return &MultiExporter{exporters: exporters}
}

func (m *MultiExporter) ExportStats(stats Stats) error {
	var first error
	for _, e := range m.exporters {
		if err := e.ExportStats(stats); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiExporter) Close() error {
	var first error
	for _, e := range m.exporters {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
