package usecase

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
	"FinSight/pkg/logger"
)

// EventCollector drives the producer path: raw events from the source
// are validated, folded into the aggregation engine, evaluated for
// alerts and handed to the archiver. Events are sharded across workers
// by symbol hash so one symbol is always processed in arrival order
// while distinct symbols proceed concurrently.
type EventCollector struct {
	source   drepo.EventSource
	ingestor *EventIngestor
	engine   *AggregationEngine
	detector *AlertDetector
	archiver *EventArchiver
	metrics  drepo.Metrics
	log      *logger.Logger

	workers  int
	shards   []chan *models.RawEvent
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}

	recent *recentRing
}

func NewEventCollector(
	source drepo.EventSource,
	ingestor *EventIngestor,
	engine *AggregationEngine,
	detector *AlertDetector,
	archiver *EventArchiver,
	metrics drepo.Metrics,
	log *logger.Logger,
	workers, bufferSize, recentPoints int,
) *EventCollector {
	if workers <= 0 {
		workers = 4
	}
	shards := make([]chan *models.RawEvent, workers)
	for i := range shards {
		shards[i] = make(chan *models.RawEvent, bufferSize)
	}
	return &EventCollector{
		source:   source,
		ingestor: ingestor,
		engine:   engine,
		detector: detector,
		archiver: archiver,
		metrics:  metrics,
		log:      log.With("collector"),
		workers:  workers,
		shards:   shards,
		stopCh:   make(chan struct{}),
		recent:   newRecentRing(recentPoints),
	}
}

// Start connects the source and launches the consume and worker loops.
func (c *EventCollector) Start(ctx context.Context) error {
	if err := c.source.Connect(ctx); err != nil {
		return err
	}
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, c.shards[i])
	}
	evCh, errCh := c.source.Read(ctx)
	go c.consume(ctx, evCh, errCh)
	return nil
}

// consume pumps the source. Sources that surface errors by closing
// their channels (the feed client does) and sources that keep one
// long-lived pair are both handled: any error or channel close triggers
// a reconnect followed by a fresh Read, so the stream always resumes on
// the channels the reconnected source is actually writing to.
func (c *EventCollector) consume(ctx context.Context, evCh <-chan *models.RawEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case err, ok := <-errCh:
			if !ok {
				if evCh, errCh, ok = c.resume(ctx); !ok {
					return
				}
				continue
			}
			if err != nil {
				c.metrics.RecordError("source")
				c.log.Warn("source error, reconnecting", logger.Error(err))
				if evCh, errCh, ok = c.resume(ctx); !ok {
					return
				}
			}
		case ev, ok := <-evCh:
			if !ok {
				if evCh, errCh, ok = c.resume(ctx); !ok {
					return
				}
				continue
			}
			if ev == nil {
				continue
			}
			shard := c.shards[shardFor(ev.Symbol, c.workers)]
			select {
			case shard <- ev:
			default:
				// shard saturated; drop rather than stall the source
				c.metrics.RecordError("shard_full")
			}
		}
	}
}

// resume reconnects the source, retrying until it comes back or
// shutdown begins, then re-reads its channels.
func (c *EventCollector) resume(ctx context.Context) (<-chan *models.RawEvent, <-chan error, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil, false
		case <-c.stopCh:
			return nil, nil, false
		default:
		}
		if err := c.source.Reconnect(ctx); err != nil {
			c.metrics.RecordError("reconnect")
			c.log.Warn("reconnect failed, retrying", logger.Error(err))
			select {
			case <-ctx.Done():
				return nil, nil, false
			case <-c.stopCh:
				return nil, nil, false
			case <-time.After(250 * time.Millisecond):
			}
			continue
		}
		evCh, errCh := c.source.Read(ctx)
		return evCh, errCh, true
	}
}

func (c *EventCollector) worker(ctx context.Context, in <-chan *models.RawEvent) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			c.process(ctx, ev)
		}
	}
}

func (c *EventCollector) process(ctx context.Context, ev *models.RawEvent) {
	dp, err := c.ingestor.Ingest(ev)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.metrics.RecordError("validation")
			c.log.Debug("dropped malformed event", logger.Error(err))
			return
		}
		c.metrics.RecordError("ingest")
		return
	}

	snap := c.engine.Update(dp)
	c.metrics.RecordEventIngested("stream", dp.Symbol)
	c.metrics.RecordLastPrice(dp.Symbol, dp.Price)
	c.recent.add(*dp)

	if alert := c.detector.Evaluate(dp, snap); alert != nil {
		c.metrics.RecordAlert(alert.Symbol, alert.Severity)
		c.log.Info("alert emitted",
			logger.String("symbol", alert.Symbol),
			logger.String("severity", string(alert.Severity)),
			logger.Float64("value", alert.TriggeringValue))
		c.archiver.ArchiveAlert(ctx, alert)
	}

	c.archiver.ArchivePoint(ctx, dp)
}

// RecentPoints returns up to limit recent data points, newest first.
func (c *EventCollector) RecentPoints(limit int) []models.DataPoint {
	return c.recent.snapshot(limit)
}

// TotalPoints reports the count of points processed since start.
func (c *EventCollector) TotalPoints() int {
	return c.recent.total()
}

// IsConnected reports source connectivity.
func (c *EventCollector) IsConnected() bool {
	return c.source.IsConnected()
}

// Shutdown stops the workers and closes the source.
func (c *EventCollector) Shutdown(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	return c.source.Close()
}

func shardFor(symbol string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return int(h.Sum32() % uint32(n))
}

// recentRing keeps the most recent data points for GET /stream/data.
type recentRing struct {
	mu    sync.RWMutex
	buf   []models.DataPoint
	next  int
	count int
	seen  int
}

func newRecentRing(size int) *recentRing {
	if size <= 0 {
		size = 100
	}
	return &recentRing{buf: make([]models.DataPoint, size)}
}

func (r *recentRing) add(dp models.DataPoint) {
	r.mu.Lock()
	r.buf[r.next] = dp
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
	r.seen++
	r.mu.Unlock()
}

func (r *recentRing) snapshot(limit int) []models.DataPoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]models.DataPoint, 0, limit)
	for i := 1; i <= limit; i++ {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}

func (r *recentRing) total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seen
}
