package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
)

// basePrices seeds the random walk for symbols without an explicit
// starting price.
var basePrices = map[string]float64{
	"AAPL":  178.50,
	"GOOGL": 142.30,
	"MSFT":  378.90,
	"AMZN":  151.20,
	"TSLA":  242.80,
	"META":  325.60,
	"NVDA":  495.20,
	"JPM":   158.40,
}

const defaultBasePrice = 100.0

// Source implements an EventSource that emits synthetic ticks for a
// fixed symbol set on a timer. Each tick moves the price by up to ±2%
// of its current value, which keeps the stream realistic enough to
// exercise windows and alert rules without an upstream feed.
type Source struct {
	symbols  []string
	interval time.Duration

	mu        sync.Mutex
	prices    map[string]float64
	rng       *rand.Rand
	connected bool
}

func New(symbols []string, interval time.Duration) drepo.EventSource {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	prices := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if p, ok := basePrices[s]; ok {
			prices[s] = p
		} else {
			prices[s] = defaultBasePrice
		}
	}
	return &Source{
		symbols:  symbols,
		interval: interval,
		prices:   prices,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Source) Connect(_ context.Context) error {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Read emits one event per symbol every tick. The error channel never
// carries anything; it closes with the event channel on ctx cancel.
func (s *Source) Read(ctx context.Context) (<-chan *models.RawEvent, <-chan error) {
	events := make(chan *models.RawEvent, len(s.symbols)*4)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, ev := range s.tick() {
					select {
					case events <- ev:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return events, errs
}

func (s *Source) tick() []*models.RawEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().Unix()
	out := make([]*models.RawEvent, 0, len(s.symbols))
	for _, sym := range s.symbols {
		prev := s.prices[sym]
		changePct := (s.rng.Float64()*4 - 2) // ±2%
		price := prev * (1 + changePct/100)
		s.prices[sym] = price
		out = append(out, &models.RawEvent{
			Symbol:    sym,
			Price:     price,
			Volume:    int64(s.rng.Intn(4_000_000) + 1_000_000),
			Timestamp: now,
			ChangePct: changePct,
		})
	}
	return out
}

func (s *Source) Reconnect(ctx context.Context) error { return s.Connect(ctx) }

func (s *Source) Close() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

func (s *Source) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
