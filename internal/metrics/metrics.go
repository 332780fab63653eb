// Package metrics records render statistics in a private Prometheus
// registry that can be dumped to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	jobsTotal       *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	framesRendered  prometheus.Counter
	fallbacksTotal  *prometheus.CounterVec
	outputBytes     prometheus.Gauge
	lastRunUnixTime prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		jobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subburn_jobs_total",
				Help: "Total number of subtitle render jobs",
			},
			[]string{"mode", "renderer", "status"},
		),
		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subburn_job_duration_seconds",
				Help:    "Wall time of subtitle render jobs in seconds",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"mode", "renderer"},
		),
		framesRendered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "subburn_frames_rendered_total",
				Help: "Total number of frames drawn by the frame renderer",
			},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subburn_renderer_fallbacks_total",
				Help: "Jobs rerouted because the requested renderer lacked a capability",
			},
			[]string{"from", "to"},
		),
		outputBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "subburn_output_bytes",
				Help: "Size of the last rendered output file",
			},
		),
		lastRunUnixTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "subburn_last_run_timestamp_seconds",
				Help: "Unix time the last job finished",
			},
		),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// ObserveJob records a finished job.
func (m *Metrics) ObserveJob(mode, renderer string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(mode, renderer, status(success)).Inc()
	m.jobDuration.WithLabelValues(mode, renderer).Observe(elapsed.Seconds())
	m.lastRunUnixTime.SetToCurrentTime()
}

func (m *Metrics) AddFrames(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.framesRendered.Add(float64(n))
}

func (m *Metrics) Fallback(from, to string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) SetOutputBytes(n int64) {
	if m == nil {
		return
	}
	m.outputBytes.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format,
// replacing path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
