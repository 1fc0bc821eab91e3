package observability

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsNamespace = "nhl_etl"

// PipelineMetrics holds per-run counters. A batch job has no scrape window,
// so the registry is pushed to a Pushgateway once the run finishes.
type PipelineMetrics struct {
	registry *prometheus.Registry
	url      string
	job      string

	rows          *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	lastStatus    *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

func NewPipelineMetrics(pushgatewayURL, job string) *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		url:      strings.TrimSpace(pushgatewayURL),
		job:      job,
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_total",
			Help:      "Rows processed by the pipeline, by stage outcome.",
		}, []string{"outcome"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_failures_total",
			Help:      "Failed NHL API fetches, by entity and kind.",
		}, []string{"entity", "kind"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"stage"}),
		lastStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_status",
			Help:      "1 for the status the last run finished with.",
		}, []string{"status"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.registry.MustRegister(m.rows, m.fetchFailures, m.stageDuration, m.lastStatus, m.lastSuccess)
	return m
}

func (m *PipelineMetrics) AddRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(outcome).Add(float64(n))
}

func (m *PipelineMetrics) FetchFailed(entity, kind string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(entity, kind).Inc()
}

func (m *PipelineMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *PipelineMetrics) RunFinished(status string, at time.Time) {
	if m == nil {
		return
	}
	m.lastStatus.Reset()
	m.lastStatus.WithLabelValues(status).Set(1)
	if status == "success" {
		m.lastSuccess.Set(float64(at.Unix()))
	}
}

// Registry exposes the collectors, mostly for tests.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the registry to the Pushgateway. It is a no-op without a URL.
func (m *PipelineMetrics) Push(ctx context.Context) error {
	if m == nil || m.url == "" {
		return nil
	}
	return push.New(m.url, m.job).Gatherer(m.registry).PushContext(ctx)
}
