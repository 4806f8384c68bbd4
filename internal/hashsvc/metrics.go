// metrics.go - Metrics collection for the hashing service
package hashsvc

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType string

const (
	Counter   MetricType = "counter"
	Gauge     MetricType = "gauge"
	Histogram MetricType = "histogram"
)

// histogramWindow bounds the number of samples kept per histogram series.
const histogramWindow = 1000

// Metric represents the latest observation of one series
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HistogramSummary aggregates the samples of a histogram series
type HistogramSummary struct {
	Count float64 `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
	Avg   float64 `json:"avg"`
}

// MetricsSummary is the body served on /metrics
type MetricsSummary struct {
	Counters   map[string]int64            `json:"counters" cbor:"1,keyasint"`
	Gauges     map[string]float64          `json:"gauges" cbor:"2,keyasint"`
	Histograms map[string]HistogramSummary `json:"histograms" cbor:"3,keyasint"`
}

// MetricsCollector manages metrics collection
type MetricsCollector struct {
	mu         sync.RWMutex
	metrics    map[string]*Metric
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:    make(map[string]*Metric),
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

// IncrementCounter increments a counter metric
func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	mc.AddCounter(name, 1, labels)
}

// AddCounter adds delta to a counter metric
func (mc *MetricsCollector) AddCounter(name string, delta int64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.counters[key] += delta
	mc.updateMetric(key, name, Counter, float64(mc.counters[key]), labels)
}

// SetGauge sets a gauge metric value
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.gauges[key] = value
	mc.updateMetric(key, name, Gauge, value, labels)
}

// RecordHistogram records a value in a histogram
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	h := append(mc.histograms[key], value)
	if len(h) > histogramWindow {
		h = h[len(h)-histogramWindow:]
	}
	mc.histograms[key] = h
	mc.updateMetric(key, name, Histogram, value, labels)
}

// GetMetric retrieves a metric by name and labels
func (mc *MetricsCollector) GetMetric(name string, labels map[string]string) *Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	m, ok := mc.metrics[makeKey(name, labels)]
	if !ok {
		return nil
	}
	c := *m
	return &c
}

// CounterValue returns the current value of a counter, zero if it was never incremented
func (mc *MetricsCollector) CounterValue(name string, labels map[string]string) int64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.counters[makeKey(name, labels)]
}

// GetAllMetrics returns all collected metrics sorted by series key
func (mc *MetricsCollector) GetAllMetrics() []*Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	keys := make([]string, 0, len(mc.metrics))
	for k := range mc.metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	metrics := make([]*Metric, 0, len(keys))
	for _, k := range keys {
		c := *mc.metrics[k]
		metrics = append(metrics, &c)
	}
	return metrics
}

// GetMetricsSummary returns a summary of all metrics
func (mc *MetricsCollector) GetMetricsSummary() *MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	summary := &MetricsSummary{
		Counters:   make(map[string]int64, len(mc.counters)),
		Gauges:     make(map[string]float64, len(mc.gauges)),
		Histograms: make(map[string]HistogramSummary, len(mc.histograms)),
	}
	for key, v := range mc.counters {
		summary.Counters[key] = v
	}
	for key, v := range mc.gauges {
		summary.Gauges[key] = v
	}
	for key, values := range mc.histograms {
		if len(values) == 0 {
			continue
		}
		h := HistogramSummary{Count: float64(len(values)), Min: values[0], Max: values[0]}
		for _, v := range values {
			h.Min = min(h.Min, v)
			h.Max = max(h.Max, v)
			h.Sum += v
		}
		h.Avg = h.Sum / h.Count
		summary.Histograms[key] = h
	}
	return summary
}

// Reset resets all metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics = make(map[string]*Metric)
	mc.counters = make(map[string]int64)
	mc.gauges = make(map[string]float64)
	mc.histograms = make(map[string][]float64)
}

// makeKey creates a deterministic key for a metric name and labels: name{k1=v1,k2=v2}
func makeKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

func (mc *MetricsCollector) updateMetric(key, name string, metricType MetricType, value float64, labels map[string]string) {
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      metricType,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Predefined metric names
const (
	MetricRequestCount    = "request_count"
	MetricRequestDuration = "request_duration_seconds"
	MetricHashCount       = "hash_count"
	MetricHashLanes       = "hash_output_lanes"
	MetricBatchSize       = "batch_size"
	MetricRateLimited     = "rate_limited_count"
	MetricErrorCount      = "error_count"
	MetricInFlight        = "requests_in_flight"
)

// RecordRequest records one served request
func (mc *MetricsCollector) RecordRequest(route string, status int, duration time.Duration) {
	mc.IncrementCounter(MetricRequestCount, map[string]string{"route": route, "status": strconv.Itoa(status)})
	mc.RecordHistogram(MetricRequestDuration, duration.Seconds(), map[string]string{"route": route})
}

// RecordHash records hash invocations of the given kind
func (mc *MetricsCollector) RecordHash(kind string, count int, outLanes int) {
	mc.AddCounter(MetricHashCount, int64(count), map[string]string{"kind": kind})
	mc.RecordHistogram(MetricHashLanes, float64(outLanes), map[string]string{"kind": kind})
}

func (mc *MetricsCollector) RecordBatch(size int) {
	mc.RecordHistogram(MetricBatchSize, float64(size), nil)
}

func (mc *MetricsCollector) RecordRateLimited() {
	mc.IncrementCounter(MetricRateLimited, nil)
}

func (mc *MetricsCollector) RecordError(errorType string) {
	mc.IncrementCounter(MetricErrorCount, map[string]string{"type": errorType})
}
