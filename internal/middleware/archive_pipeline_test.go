package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordEventIngested(string, string)  {}
func (nopMetrics) RecordAlert(string, models.Severity) {}
func (nopMetrics) RecordChunksIndexed(int)             {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordLastPrice(string, float64)     {}
func (nopMetrics) RecordLatency(string, float64)       {}

type fakeSink struct {
	mu     sync.Mutex
	fail   bool
	writes int
}

func (s *fakeSink) Write(_ context.Context, _ *models.DataPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.fail {
		return errors.New("sink down")
	}
	return nil
}

func (s *fakeSink) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func TestPipelinePassthrough(t *testing.T) {
	sink := &fakeSink{}
	p := NewArchivePipeline(sink, nopMetrics{})

	dp := &models.DataPoint{Symbol: "AAPL", Price: 100}
	if err := p.Process(context.Background(), dp); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("writes = %d, want 1", sink.count())
	}
}

func TestPipelineBuffersAndFlushes(t *testing.T) {
	sink := &fakeSink{fail: true}
	p := NewArchivePipeline(sink, nopMetrics{}, WithBufferSize(10))

	dp := &models.DataPoint{Symbol: "AAPL", Price: 100}
	if err := p.Process(context.Background(), dp); err == nil {
		t.Fatal("expected error while sink is down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	sink.setFail(false)

	deadline := time.After(2 * time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("buffered point never flushed (writes = %d)", sink.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPipelineStopInterruptsBackoff(t *testing.T) {
	sink := &fakeSink{fail: true}
	p := NewArchivePipeline(sink, nopMetrics{}, WithBufferSize(10))

	dp := &models.DataPoint{Symbol: "AAPL", Price: 100}
	if err := p.Process(context.Background(), dp); err == nil {
		t.Fatal("expected error while sink is down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	// let the flusher hit the failing sink and enter backoff
	deadline := time.After(2 * time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("flusher never attempted the buffered point")
		case <-time.After(5 * time.Millisecond):
		}
	}

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Stop blocked behind backoff sleep")
	}

	// stopped pipelines stay stopped, and Stop is safe to repeat
	p.Stop()
	p.Start(ctx)
	before := sink.count()
	sink.setFail(false)
	time.Sleep(50 * time.Millisecond)
	if got := sink.count(); got != before {
		t.Fatalf("flusher wrote after Stop (writes %d -> %d)", before, got)
	}
}
