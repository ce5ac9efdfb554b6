package metrics

import (
	"net/http"
	"time"

	"bucketbench/internal/progress"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics
type Collector struct {
	registry        *prometheus.Registry
	tasksTotal      *prometheus.CounterVec
	bytesTotal      prometheus.Counter
	inflightWorkers prometheus.Gauge
	duration        prometheus.Histogram
	progressTracker *progress.Tracker
}

// New creates a new metrics collector. Metrics are registered on a private
// registry so repeated construction (e.g. from tests) cannot collide.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bench_read_tasks_total",
				Help: "Total number of range read tasks processed",
			},
			[]string{"status"},
		),
		bytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bench_read_bytes_total",
				Help: "Total bytes read back from the bucket",
			},
		),
		inflightWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bench_inflight_workers",
				Help: "Number of workers currently executing a read",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bench_read_duration_seconds",
				Help:    "Time taken to read one byte range",
				Buckets: prometheus.DefBuckets,
			},
		),
		progressTracker: progress.NewTracker(),
	}

	c.registry.MustRegister(c.tasksTotal)
	c.registry.MustRegister(c.bytesTotal)
	c.registry.MustRegister(c.inflightWorkers)
	c.registry.MustRegister(c.duration)

	return c
}

// IncSuccessWithBytes records one successful read task and its byte count.
func (c *Collector) IncSuccessWithBytes(bytes int64) {
	c.tasksTotal.WithLabelValues("success").Inc()
	c.bytesTotal.Add(float64(bytes))
	c.progressTracker.AddRead(bytes)
}

// IncFailed increments the failed task counter.
func (c *Collector) IncFailed() {
	c.tasksTotal.WithLabelValues("failed").Inc()
	c.progressTracker.AddFailed()
}

// AddDiscovered records objects and bytes seen by the enumeration.
func (c *Collector) AddDiscovered(objects, bytes int64) {
	c.progressTracker.AddDiscovered(objects, bytes)
}

// AddEnqueued records tasks pushed onto the work queue.
func (c *Collector) AddEnqueued(tasks int64) {
	c.progressTracker.AddEnqueued(tasks)
}

// SetListingDone marks enumeration as finished for progress reporting.
func (c *Collector) SetListingDone() {
	c.progressTracker.SetListingDone()
}

// IncInflight marks one worker as busy.
func (c *Collector) IncInflight() {
	c.inflightWorkers.Inc()
}

// DecInflight marks one worker as idle.
func (c *Collector) DecInflight() {
	c.inflightWorkers.Dec()
}

// ObserveDuration observes one read's duration
func (c *Collector) ObserveDuration(duration time.Duration) {
	c.duration.Observe(duration.Seconds())
}

// StartServer starts the metrics HTTP server
func (c *Collector) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}

// GetProgressTracker returns the progress tracker
func (c *Collector) GetProgressTracker() *progress.Tracker {
	return c.progressTracker
}
