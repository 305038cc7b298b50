package usecase

import (
	"strings"
	"time"

	"FinSight/internal/domain/models"
)

// EventIngestor validates and normalizes raw events into DataPoints.
// Malformed input is rejected and dropped by the caller, never retried.
type EventIngestor struct{}

func NewEventIngestor() *EventIngestor {
	return &EventIngestor{}
}

// Ingest returns a validated DataPoint or a *models.ValidationError.
func (i *EventIngestor) Ingest(raw *models.RawEvent) (*models.DataPoint, error) {
	if raw == nil {
		return nil, &models.ValidationError{Field: "event", Reason: "is nil"}
	}
	sym := strings.TrimSpace(raw.Symbol)
	if sym == "" {
		return nil, &models.ValidationError{Field: "symbol", Reason: "is required"}
	}
	if raw.Price <= 0 {
		return nil, &models.ValidationError{Field: "price", Reason: "must be positive"}
	}
	if raw.Volume <= 0 {
		return nil, &models.ValidationError{Field: "volume", Reason: "must be positive"}
	}
	if raw.Timestamp <= 0 {
		return nil, &models.ValidationError{Field: "timestamp", Reason: "is required"}
	}

	ts := raw.Timestamp
	if ts > 1e11 { // millis
		ts = ts / 1000
	}

	return &models.DataPoint{
		Symbol:    strings.ToUpper(sym),
		Price:     raw.Price,
		Volume:    raw.Volume,
		Timestamp: time.Unix(ts, 0).UTC(),
		ChangePct: raw.ChangePct,
	}, nil
}
