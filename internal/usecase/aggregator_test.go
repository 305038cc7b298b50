package usecase

import (
	"testing"
	"time"

	"FinSight/internal/domain/models"
)

func point(symbol string, price float64, volume int64, sec int64) *models.DataPoint {
	return &models.DataPoint{
		Symbol:    symbol,
		Price:     price,
		Volume:    volume,
		Timestamp: time.Unix(sec, 0).UTC(),
	}
}

func TestAggregationWindowOfThree(t *testing.T) {
	e := NewAggregationEngine(3)

	e.Update(point("AAPL", 100, 10, 1))
	e.Update(point("AAPL", 102, 10, 2))
	snap := e.Update(point("AAPL", 98, 10, 3))

	if snap.Count != 3 {
		t.Fatalf("count = %d, want 3", snap.Count)
	}
	if snap.Current != 98 {
		t.Fatalf("current = %v, want 98", snap.Current)
	}
	if snap.Min != 98 || snap.Max != 102 {
		t.Fatalf("min/max = %v/%v, want 98/102", snap.Min, snap.Max)
	}
	if snap.Avg != 100.0 {
		t.Fatalf("avg = %v, want 100.0", snap.Avg)
	}
}

func TestAggregationEviction(t *testing.T) {
	e := NewAggregationEngine(3)

	e.Update(point("AAPL", 100, 10, 1))
	e.Update(point("AAPL", 102, 10, 2))
	e.Update(point("AAPL", 98, 10, 3))
	// evicts 100; window is now [102, 98, 105]
	snap := e.Update(point("AAPL", 105, 10, 4))

	if snap.Count != 3 {
		t.Fatalf("count = %d, want 3", snap.Count)
	}
	if snap.Min != 98 || snap.Max != 105 {
		t.Fatalf("min/max = %v/%v, want 98/105", snap.Min, snap.Max)
	}
	want := (102.0 + 98.0 + 105.0) / 3.0
	if snap.Avg != want {
		t.Fatalf("avg = %v, want %v", snap.Avg, want)
	}
	if snap.WindowStart.Unix() != 2 || snap.WindowEnd.Unix() != 4 {
		t.Fatalf("window = [%v, %v], want [2, 4]", snap.WindowStart.Unix(), snap.WindowEnd.Unix())
	}
}

func TestAggregationEvictedExtremeRescan(t *testing.T) {
	e := NewAggregationEngine(3)

	e.Update(point("AAPL", 200, 10, 1)) // the max, evicted next
	e.Update(point("AAPL", 100, 10, 2))
	e.Update(point("AAPL", 110, 10, 3))
	snap := e.Update(point("AAPL", 105, 10, 4))

	if snap.Max != 110 {
		t.Fatalf("max = %v, want 110 after evicting 200", snap.Max)
	}
	if snap.Min != 100 {
		t.Fatalf("min = %v, want 100", snap.Min)
	}
}

func TestAggregationSymbolsIndependent(t *testing.T) {
	e := NewAggregationEngine(3)

	e.Update(point("AAPL", 100, 10, 1))
	e.Update(point("MSFT", 300, 10, 1))

	a, ok := e.Read("AAPL")
	if !ok || a.Current != 100 {
		t.Fatalf("AAPL = %+v ok=%v", a, ok)
	}
	m, ok := e.Read("MSFT")
	if !ok || m.Current != 300 {
		t.Fatalf("MSFT = %+v ok=%v", m, ok)
	}
	if _, ok := e.Read("TSLA"); ok {
		t.Fatalf("unobserved symbol must not be readable")
	}

	all := e.ReadAll()
	if len(all) != 2 {
		t.Fatalf("ReadAll = %d symbols, want 2", len(all))
	}
}

func TestAggregationVolumeSum(t *testing.T) {
	e := NewAggregationEngine(2)

	e.Update(point("AAPL", 100, 10, 1))
	e.Update(point("AAPL", 100, 20, 2))
	snap := e.Update(point("AAPL", 100, 30, 3))

	if snap.VolumeSum != 50 {
		t.Fatalf("volume sum = %d, want 50", snap.VolumeSum)
	}
}
