package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"FinSight/pkg/logger"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	src := New("key", "wss://example.invalid/ws", []string{"AAPL"}, 10*time.Millisecond, 10*time.Millisecond, log)
	return src.(*Client)
}

func TestFeedReadClosesChannelsAfterError(t *testing.T) {
	c := testClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// no connection established, so the read loop reports once and ends
	events, errs := c.Read(ctx)

	select {
	case err := <-errs:
		if err == nil {
			t.Fatalf("expected a read error, got nil")
		}
	case <-time.After(time.Second):
		t.Fatalf("no error reported for missing connection")
	}

	if _, ok := <-events; ok {
		t.Fatalf("event channel still open after failure")
	}
	if _, ok := <-errs; ok {
		t.Fatalf("error channel still open after failure")
	}
}

func TestFeedStateSafeUnderConcurrency(t *testing.T) {
	c := testClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.IsConnected()
				_ = c.Close()
				_, _ = c.Read(ctx)
			}
		}()
	}
	wg.Wait()

	if c.IsConnected() {
		t.Fatalf("closed client reports connected")
	}
}
