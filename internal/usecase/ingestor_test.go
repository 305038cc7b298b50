package usecase

import (
	"errors"
	"testing"

	"FinSight/internal/domain/models"
)

func TestIngestValid(t *testing.T) {
	in := NewEventIngestor()

	dp, err := in.Ingest(&models.RawEvent{
		Symbol:    " aapl ",
		Price:     178.5,
		Volume:    1000,
		Timestamp: 1700000000,
		ChangePct: 0.4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dp.Symbol != "AAPL" {
		t.Fatalf("symbol = %q, want AAPL", dp.Symbol)
	}
	if dp.Timestamp.Unix() != 1700000000 {
		t.Fatalf("timestamp = %d", dp.Timestamp.Unix())
	}
}

func TestIngestMillisNormalized(t *testing.T) {
	in := NewEventIngestor()

	dp, err := in.Ingest(&models.RawEvent{
		Symbol:    "AAPL",
		Price:     178.5,
		Volume:    1000,
		Timestamp: 1700000000123, // millis
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dp.Timestamp.Unix() != 1700000000 {
		t.Fatalf("timestamp = %d, want seconds", dp.Timestamp.Unix())
	}
}

func TestIngestRejectsMalformed(t *testing.T) {
	in := NewEventIngestor()

	cases := []struct {
		name string
		ev   *models.RawEvent
	}{
		{"nil", nil},
		{"empty symbol", &models.RawEvent{Price: 1, Volume: 1, Timestamp: 1}},
		{"zero price", &models.RawEvent{Symbol: "A", Volume: 1, Timestamp: 1}},
		{"negative price", &models.RawEvent{Symbol: "A", Price: -1, Volume: 1, Timestamp: 1}},
		{"zero volume", &models.RawEvent{Symbol: "A", Price: 1, Timestamp: 1}},
		{"zero timestamp", &models.RawEvent{Symbol: "A", Price: 1, Volume: 1}},
	}
	for _, tc := range cases {
		_, err := in.Ingest(tc.ev)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: error type %T, want *models.ValidationError", tc.name, err)
		}
	}
}
