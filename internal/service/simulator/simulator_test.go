package simulator

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestTickEmitsAllSymbols(t *testing.T) {
	src := New([]string{"AAPL", "MSFT", "XXXX"}, time.Second).(*Source)

	events := src.tick()
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	seen := make(map[string]bool)
	for _, ev := range events {
		seen[ev.Symbol] = true
		if ev.Price <= 0 {
			t.Fatalf("%s price = %v", ev.Symbol, ev.Price)
		}
		if ev.Volume < 1_000_000 || ev.Volume > 5_000_000 {
			t.Fatalf("%s volume = %d out of range", ev.Symbol, ev.Volume)
		}
	}
	if !seen["XXXX"] {
		t.Fatal("unknown symbol must still tick from the default base price")
	}
}

func TestTickBoundedWalk(t *testing.T) {
	src := New([]string{"AAPL"}, time.Second).(*Source)

	prev := src.prices["AAPL"]
	for i := 0; i < 50; i++ {
		ev := src.tick()[0]
		maxMove := prev * 0.02 * 1.0000001
		if math.Abs(ev.Price-prev) > maxMove {
			t.Fatalf("tick %d moved %.4f from %.4f, beyond 2%%", i, ev.Price, prev)
		}
		if math.Abs(ev.ChangePct) > 2.0000001 {
			t.Fatalf("change pct = %v", ev.ChangePct)
		}
		prev = ev.Price
	}
}

func TestConnectLifecycle(t *testing.T) {
	src := New([]string{"AAPL"}, time.Second)

	if src.IsConnected() {
		t.Fatal("connected before Connect")
	}
	if err := src.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !src.IsConnected() {
		t.Fatal("not connected after Connect")
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if src.IsConnected() {
		t.Fatal("still connected after Close")
	}
}
