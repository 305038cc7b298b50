package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FinSight/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsIngested *prometheus.CounterVec
	alertsTotal    *prometheus.CounterVec
	chunksIndexed  prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_events_ingested_total",
				Help: "Total number of validated events ingested",
			},
			[]string{"source", "symbol"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_alerts_total",
				Help: "Total number of alerts emitted",
			},
			[]string{"symbol", "severity"},
		),
		chunksIndexed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "finsight_chunks_indexed_total",
				Help: "Total number of chunks added to the retrieval index",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsight_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEventIngested counts a validated event by source and symbol.
func (r *Recorder) RecordEventIngested(source, symbol string) {
	r.eventsIngested.WithLabelValues(source, symbol).Inc()
}

// RecordAlert counts an emitted alert by symbol and severity.
func (r *Recorder) RecordAlert(symbol string, severity models.Severity) {
	r.alertsTotal.WithLabelValues(symbol, string(severity)).Inc()
}

// RecordChunksIndexed counts chunks added to the index.
func (r *Recorder) RecordChunksIndexed(n int) {
	r.chunksIndexed.Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
