package usecase

import (
	"sync"

	"FinSight/internal/domain/models"
)

// AggregationEngine maintains a count-based sliding window of the last
// N points per symbol. Updates for one symbol are serialized by the
// collector; readers take value copies and never block the update path
// beyond the per-symbol lock. The window sum is maintained
// incrementally; min/max are rescanned only when the evicted point was
// the extreme (windows are small, the rescan is bounded by N).
type AggregationEngine struct {
	windowSize int

	mu      sync.RWMutex
	symbols map[string]*symbolWindow
}

type symbolWindow struct {
	mu     sync.Mutex
	points []models.DataPoint // ring, oldest at head
	head   int
	count  int
	sum    float64
	volSum int64
	snap   models.AggregateSnapshot
}

func NewAggregationEngine(windowSize int) *AggregationEngine {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &AggregationEngine{
		windowSize: windowSize,
		symbols:    make(map[string]*symbolWindow),
	}
}

// Update folds dp into its symbol's window and returns the resulting
// snapshot. Each call strictly advances the window.
func (e *AggregationEngine) Update(dp *models.DataPoint) models.AggregateSnapshot {
	w := e.window(dp.Symbol)

	w.mu.Lock()
	defer w.mu.Unlock()

	evictedExtreme := false
	if w.count == len(w.points) {
		old := w.points[w.head]
		w.sum -= old.Price
		w.volSum -= old.Volume
		if old.Price <= w.snap.Min || old.Price >= w.snap.Max {
			evictedExtreme = true
		}
		w.points[w.head] = *dp
		w.head = (w.head + 1) % len(w.points)
	} else {
		w.points[(w.head+w.count)%len(w.points)] = *dp
		w.count++
	}
	w.sum += dp.Price
	w.volSum += dp.Volume

	snap := models.AggregateSnapshot{
		Symbol:      dp.Symbol,
		Count:       w.count,
		Current:     dp.Price,
		Avg:         w.sum / float64(w.count),
		VolumeSum:   w.volSum,
		WindowStart: w.points[w.head].Timestamp,
		WindowEnd:   dp.Timestamp,
	}

	if evictedExtreme || w.count == 1 {
		snap.Min, snap.Max = w.rescan()
	} else {
		snap.Min = w.snap.Min
		snap.Max = w.snap.Max
		if dp.Price < snap.Min {
			snap.Min = dp.Price
		}
		if dp.Price > snap.Max {
			snap.Max = dp.Price
		}
	}

	w.snap = snap
	return snap
}

// rescan recomputes min/max over the window. Caller holds w.mu.
func (w *symbolWindow) rescan() (float64, float64) {
	min := w.points[w.head].Price
	max := min
	for i := 0; i < w.count; i++ {
		p := w.points[(w.head+i)%len(w.points)]
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	return min, max
}

// Read returns the latest snapshot for symbol, or false when the
// symbol has never been observed.
func (e *AggregationEngine) Read(symbol string) (models.AggregateSnapshot, bool) {
	e.mu.RLock()
	w, ok := e.symbols[symbol]
	e.mu.RUnlock()
	if !ok {
		return models.AggregateSnapshot{}, false
	}

	w.mu.Lock()
	snap := w.snap
	w.mu.Unlock()
	return snap, snap.Count > 0
}

// ReadAll returns the latest snapshot of every observed symbol.
func (e *AggregationEngine) ReadAll() map[string]models.AggregateSnapshot {
	e.mu.RLock()
	windows := make([]*symbolWindow, 0, len(e.symbols))
	for _, w := range e.symbols {
		windows = append(windows, w)
	}
	e.mu.RUnlock()

	out := make(map[string]models.AggregateSnapshot, len(windows))
	for _, w := range windows {
		w.mu.Lock()
		snap := w.snap
		w.mu.Unlock()
		if snap.Count > 0 {
			out[snap.Symbol] = snap
		}
	}
	return out
}

func (e *AggregationEngine) window(symbol string) *symbolWindow {
	e.mu.RLock()
	w, ok := e.symbols[symbol]
	e.mu.RUnlock()
	if ok {
		return w
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if w, ok = e.symbols[symbol]; ok {
		return w
	}
	w = &symbolWindow{points: make([]models.DataPoint, e.windowSize)}
	e.symbols[symbol] = w
	return w
}
