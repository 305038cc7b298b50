package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

// scriptedSource plays one batch of events per Read call. A batch's
// mode controls how that stream ends: "stay" keeps the channels open,
// "error" sends an error and closes both (the WebSocket feed contract),
// "close" closes both without an error.
type scriptedBatch struct {
	events []*models.RawEvent
	mode   string
}

type scriptedSource struct {
	mu         sync.Mutex
	batches    []scriptedBatch
	reads      int
	reconnects int
	connected  bool
}

func (s *scriptedSource) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *scriptedSource) Read(context.Context) (<-chan *models.RawEvent, <-chan error) {
	s.mu.Lock()
	var batch scriptedBatch
	if s.reads < len(s.batches) {
		batch = s.batches[s.reads]
	} else {
		batch = scriptedBatch{mode: "stay"}
	}
	s.reads++
	s.mu.Unlock()

	events := make(chan *models.RawEvent, len(batch.events)+1)
	errs := make(chan error, 1)
	for _, ev := range batch.events {
		events <- ev
	}
	if batch.mode != "stay" {
		// the stream fails only after its events were delivered
		go func() {
			for len(events) > 0 {
				time.Sleep(time.Millisecond)
			}
			if batch.mode == "error" {
				errs <- fmt.Errorf("stream broken")
			}
			close(events)
			close(errs)
		}()
	}
	return events, errs
}

func (s *scriptedSource) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *scriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *scriptedSource) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *scriptedSource) stats() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

func raw(symbol string, price float64, ts int64) *models.RawEvent {
	return &models.RawEvent{Symbol: symbol, Price: price, Volume: 1000, Timestamp: ts}
}

func newTestCollector(t *testing.T, src *scriptedSource, workers int) (*EventCollector, *AggregationEngine) {
	t.Helper()
	engine := NewAggregationEngine(100)
	detector := NewAlertDetector(testRules(), 100)
	archiver := NewEventArchiver(nil, nil, nopMetrics{}, "none", 0)
	return NewEventCollector(src, NewEventIngestor(), engine, detector, archiver,
		nopMetrics{}, testLogger(t), workers, 64, 10), engine
}

func waitForPoints(t *testing.T, c *EventCollector, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.TotalPoints() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("processed %d points, want %d", c.TotalPoints(), want)
}

func TestCollectorResumesAfterSourceError(t *testing.T) {
	src := &scriptedSource{batches: []scriptedBatch{
		{events: []*models.RawEvent{raw("AAPL", 100, 1700000001)}, mode: "error"},
		{events: []*models.RawEvent{raw("AAPL", 101, 1700000002), raw("AAPL", 102, 1700000003)}, mode: "stay"},
	}}
	c, _ := newTestCollector(t, src, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Shutdown(context.Background())

	waitForPoints(t, c, 3)
	reads, reconnects := src.stats()
	if reconnects != 1 {
		t.Fatalf("reconnects = %d, want 1", reconnects)
	}
	if reads < 2 {
		t.Fatalf("reads = %d, want at least 2 (stream must be re-read after reconnect)", reads)
	}
}

func TestCollectorResumesAfterChannelClose(t *testing.T) {
	src := &scriptedSource{batches: []scriptedBatch{
		{events: []*models.RawEvent{raw("MSFT", 300, 1700000001)}, mode: "close"},
		{events: []*models.RawEvent{raw("MSFT", 301, 1700000002)}, mode: "stay"},
	}}
	c, _ := newTestCollector(t, src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Shutdown(context.Background())

	waitForPoints(t, c, 2)
	if _, reconnects := src.stats(); reconnects != 1 {
		t.Fatalf("reconnects = %d, want 1", reconnects)
	}
}

func TestCollectorPerSymbolOrdering(t *testing.T) {
	events := []*models.RawEvent{
		raw("AAPL", 100, 1700000001),
		raw("MSFT", 300, 1700000001),
		raw("AAPL", 110, 1700000002),
		raw("MSFT", 290, 1700000002),
		raw("AAPL", 120, 1700000003),
		raw("MSFT", 280, 1700000003),
	}
	src := &scriptedSource{batches: []scriptedBatch{{events: events, mode: "stay"}}}
	c, engine := newTestCollector(t, src, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Shutdown(context.Background())

	waitForPoints(t, c, len(events))

	// current price reflects each symbol's last event, so arrival order
	// held within the symbol even with several workers
	aapl, ok := engine.Read("AAPL")
	if !ok {
		t.Fatalf("no AAPL aggregate")
	}
	if aapl.Current != 120 || aapl.Count != 3 {
		t.Fatalf("AAPL current=%v count=%d, want 120/3", aapl.Current, aapl.Count)
	}
	msft, ok := engine.Read("MSFT")
	if !ok {
		t.Fatalf("no MSFT aggregate")
	}
	if msft.Current != 280 || msft.Count != 3 {
		t.Fatalf("MSFT current=%v count=%d, want 280/3", msft.Current, msft.Count)
	}
}

func TestCollectorDropsMalformedEvents(t *testing.T) {
	src := &scriptedSource{batches: []scriptedBatch{{
		events: []*models.RawEvent{
			raw("", 100, 1700000001),     // no symbol
			raw("AAPL", -5, 1700000001),  // bad price
			raw("AAPL", 100, 1700000002), // good
		},
		mode: "stay",
	}}}
	c, engine := newTestCollector(t, src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Shutdown(context.Background())

	waitForPoints(t, c, 1)
	time.Sleep(20 * time.Millisecond)
	if got := c.TotalPoints(); got != 1 {
		t.Fatalf("TotalPoints = %d, want 1 (malformed events dropped)", got)
	}
	if snap, ok := engine.Read("AAPL"); !ok || snap.Count != 1 {
		t.Fatalf("AAPL aggregate = %+v ok=%v, want count 1", snap, ok)
	}
}

func TestCollectorRecentNewestFirst(t *testing.T) {
	src := &scriptedSource{batches: []scriptedBatch{{
		events: []*models.RawEvent{
			raw("AAPL", 100, 1700000001),
			raw("AAPL", 101, 1700000002),
			raw("AAPL", 102, 1700000003),
		},
		mode: "stay",
	}}}
	c, _ := newTestCollector(t, src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Shutdown(context.Background())

	waitForPoints(t, c, 3)
	got := c.RecentPoints(2)
	if len(got) != 2 {
		t.Fatalf("RecentPoints = %d entries, want 2", len(got))
	}
	if got[0].Price != 102 || got[1].Price != 101 {
		t.Fatalf("recent = [%v, %v], want newest first [102, 101]", got[0].Price, got[1].Price)
	}
}
