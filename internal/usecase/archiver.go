package usecase

import (
	"context"
	"time"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
	mid "FinSight/internal/middleware"
)

// EventArchiver routes validated points and alerts to the configured
// archive backend. Archival is write-behind: failures are counted and
// buffered but never fail the producer path.
type EventArchiver struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	pipe    *mid.ArchivePipeline
}

func NewEventArchiver(pub drepo.Publisher, store drepo.Storage, metrics drepo.Metrics, backend string, bufferSize int) *EventArchiver {
	if backend == "" {
		backend = "none"
	}
	a := &EventArchiver{pub: pub, store: store, metrics: metrics, backend: backend}
	if backend != "none" {
		a.pipe = mid.NewArchivePipeline(backendSink{a}, metrics, mid.WithBufferSize(bufferSize))
	}
	return a
}

// Start launches the pipeline's background flusher.
func (a *EventArchiver) Start(ctx context.Context) {
	if a.pipe != nil {
		a.pipe.Start(ctx)
	}
}

// ArchivePoint sends dp to the configured backend through the
// buffering pipeline.
func (a *EventArchiver) ArchivePoint(ctx context.Context, dp *models.DataPoint) {
	if a.pipe == nil {
		return
	}
	start := time.Now()
	if err := a.pipe.Process(ctx, dp); err != nil {
		a.metrics.RecordError("archive_point")
		return
	}
	a.metrics.RecordLatency("archive_point", time.Since(start).Seconds())
}

// ArchiveAlert fans an alert out to Kafka when a publisher is wired.
func (a *EventArchiver) ArchiveAlert(ctx context.Context, alert *models.Alert) {
	if a.pub == nil {
		return
	}
	if err := a.pub.PublishAlert(ctx, alert); err != nil {
		a.metrics.RecordError("archive_alert")
	}
}

// Close stops the pipeline and closes underlying resources.
func (a *EventArchiver) Close() {
	if a.pipe != nil {
		a.pipe.Stop()
	}
	if a.pub != nil {
		_ = a.pub.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// backendSink adapts the archiver's backend write to the pipeline Sink.
type backendSink struct {
	a *EventArchiver
}

func (s backendSink) Write(ctx context.Context, dp *models.DataPoint) error {
	switch s.a.backend {
	case "kafka":
		return s.a.pub.PublishPoint(ctx, dp)
	case "clickhouse":
		return s.a.store.Store(ctx, dp)
	default:
		return nil
	}
}
