package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

type mockStats struct {
	keys, size, maxSize                  int64
	hits, misses, evictions, invalidated int64
	hitRate                              float64
	policy                               string
}

func (m *mockStats) KeyCount() int64          { return m.keys }
func (m *mockStats) SizeBytes() int64         { return m.size }
func (m *mockStats) MaxSizeBytes() int64      { return m.maxSize }
func (m *mockStats) HitCount() int64          { return m.hits }
func (m *mockStats) MissCount() int64         { return m.misses }
func (m *mockStats) EvictionCount() int64     { return m.evictions }
func (m *mockStats) InvalidationCount() int64 { return m.invalidated }
func (m *mockStats) HitRate() float64         { return m.hitRate }
func (m *mockStats) Policy() string           { return m.policy }

type mockExporter struct {
	exportCalls int
	closeCalls  int
	shouldError bool
	last        Stats
}

func (m *mockExporter) ExportStats(s Stats) error {
	m.exportCalls++
	m.last = s
	if m.shouldError {
		return errors.New("mock error")
	}
	return nil
}

func (m *mockExporter) Close() error {
	m.closeCalls++
	if m.shouldError {
		return errors.New("mock error")
	}
	return nil
}

func TestNoOpExporter(t *testing.T) {
	e := NewNoOpExporter()
	if err := e.ExportStats(&mockStats{hits: 1}); err != nil {
		t.Errorf("ExportStats should not error: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close should not error: %v", err)
	}
}

func TestMultiExporterFansOut(t *testing.T) {
	m1, m2 := &mockExporter{}, &mockExporter{}
	multi := NewMultiExporter(m1, m2)

	stats := &mockStats{hits: 100, misses: 20, hitRate: 83.33}
	if err := multi.ExportStats(stats); err != nil {
		t.Fatalf("ExportStats: %v", err)
	}
	if m1.exportCalls != 1 || m2.exportCalls != 1 {
		t.Fatalf("expected both exporters called, got %d/%d", m1.exportCalls, m2.exportCalls)
	}
	if err := multi.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if m1.closeCalls != 1 || m2.closeCalls != 1 {
		t.Fatalf("expected both closed, got %d/%d", m1.closeCalls, m2.closeCalls)
	}
}

func TestMultiExporterContinuesPastError(t *testing.T) {
	m1 := &mockExporter{shouldError: true}
	m2 := &mockExporter{}
	multi := NewMultiExporter(m1, m2)

	if err := multi.ExportStats(&mockStats{}); err == nil {
		t.Error("expected error from failing exporter")
	}
	if m2.exportCalls != 1 {
		t.Error("second exporter must still be called after an error")
	}
}

func TestPrometheusExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := NewPrometheusExporter(PrometheusConfig{
		Namespace:   "testcache",
		Registry:    reg,
		ConstLabels: prometheus.Labels{"cache_name": "unit"},
	})
	if err != nil {
		t.Fatalf("NewPrometheusExporter: %v", err)
	}
	defer e.Close()

	stats := &mockStats{
		keys: 3, size: 1024, maxSize: 4096,
		hits: 9, misses: 1, evictions: 2, invalidated: 4,
		hitRate: 90, policy: "lru",
	}
	if err := e.ExportStats(stats); err != nil {
		t.Fatalf("ExportStats: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	want := map[string]float64{
		"testcache_keys_count":          3,
		"testcache_size_bytes":          1024,
		"testcache_max_size_bytes":      4096,
		"testcache_hit_rate":            90,
		"testcache_hits_total":          9,
		"testcache_misses_total":        1,
		"testcache_evictions_total":     2,
		"testcache_invalidations_total": 4,
	}
	seen := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			seen[fam.GetName()] = m.GetGauge().GetValue()
		}
	}
	for name, val := range want {
		if seen[name] != val {
			t.Errorf("%s = %v, want %v", name, seen[name], val)
		}
	}
}

func TestPrometheusExporterDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusExporter(PrometheusConfig{Registry: reg}); err != nil {
		t.Fatalf("first exporter: %v", err)
	}
	if _, err := NewPrometheusExporter(PrometheusConfig{Registry: reg}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestPrometheusCloseUnregisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := NewPrometheusExporter(PrometheusConfig{Registry: reg})
	if err != nil {
		t.Fatalf("NewPrometheusExporter: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// registry is free for reuse after Close
	if _, err := NewPrometheusExporter(PrometheusConfig{Registry: reg}); err != nil {
		t.Fatalf("re-register after Close: %v", err)
	}
}

func TestInterfaceImplementation(t *testing.T) {
	var _ Exporter = (*MultiExporter)(nil)
	var _ Exporter = (*NoOpExporter)(nil)
	var _ Exporter = (*mockExporter)(nil)
	var _ Stats = (*mockStats)(nil)
}
