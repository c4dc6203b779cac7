package testutils

import (
	"sync"
	"time"

	"github.com/ahrav/go-docreview/internal/ports"
)

var _ ports.MetricsCollector = (*MockMetricsCollector)(nil)

// Sample is one recorded metric call.
type Sample struct {
	Kind   string
	Name   string
	Value  float64
	Labels map[string]string
}

// MockMetricsCollector records every call for later assertions. It is safe
// for concurrent use.
type MockMetricsCollector struct {
	mu      sync.Mutex
	samples []Sample
}

// NewMockMetricsCollector creates an empty collector.
func NewMockMetricsCollector() *MockMetricsCollector {
	return &MockMetricsCollector{}
}

func (m *MockMetricsCollector) record(s Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
}

// RecordLatency implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	m.record(Sample{Kind: "latency", Name: operation, Value: d.Seconds(), Labels: labels})
}

// RecordCounter implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.record(Sample{Kind: "counter", Name: metric, Value: value, Labels: labels})
}

// RecordGauge implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.record(Sample{Kind: "gauge", Name: metric, Value: value, Labels: labels})
}

// RecordHistogram implements ports.MetricsCollector.
func (m *MockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.record(Sample{Kind: "histogram", Name: metric, Value: value, Labels: labels})
}

// Samples returns a copy of the recorded calls in order.
func (m *MockMetricsCollector) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Sum totals the values recorded under name whose labels include every
// pair in match.
func (m *MockMetricsCollector) Sum(name string, match map[string]string) float64 {
	var total float64
	for _, s := range m.Samples() {
		if s.Name != name || !hasLabels(s.Labels, match) {
			continue
		}
		total += s.Value
	}
	return total
}

// Count returns the number of calls recorded under name.
func (m *MockMetricsCollector) Count(name string) int {
	n := 0
	for _, s := range m.Samples() {
		if s.Name == name {
			n++
		}
	}
	return n
}

func hasLabels(labels, match map[string]string) bool {
	for k, v := range match {
		if labels[k] != v {
			return false
		}
	}
	return true
}
