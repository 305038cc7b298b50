package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinSight/internal/domain/models"
	domrepo "FinSight/internal/domain/repository"
)

// Sink is the downstream write the pipeline protects.
type Sink interface {
	Write(ctx context.Context, dp *models.DataPoint) error
}

// ArchivePipeline sits between the collector and the archive backend.
// It buffers points when the backend is unavailable and flushes them in
// the background with capped exponential backoff, so a broker or
// database outage never stalls the producer path.
type ArchivePipeline struct {
	sink    Sink
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.DataPoint
	stopCh  chan struct{}
	started bool
	stopped bool
	mu      sync.Mutex
}

type PipelineOption func(*ArchivePipeline)

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *ArchivePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func NewArchivePipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *ArchivePipeline {
	p := &ArchivePipeline{
		sink:    sink,
		metrics: metrics,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.DataPoint, p.bufSize)
	return p
}

// Start launches background flushing of buffered points.
func (p *ArchivePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case dp := <-p.bufCh:
				if dp == nil {
					continue
				}
				if err := p.sink.Write(ctx, dp); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					timer := time.NewTimer(backoff)
					select {
					case <-p.stopCh:
						timer.Stop()
						return
					case <-timer.C:
					}
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- dp:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing. A stopped pipeline is done for
// good; build a new one to flush again.
func (p *ArchivePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
}

// Process forwards dp downstream, buffering on failure.
func (p *ArchivePipeline) Process(ctx context.Context, dp *models.DataPoint) error {
	start := time.Now()
	if err := p.sink.Write(ctx, dp); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- dp:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}
