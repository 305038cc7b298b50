package models

import "time"

// RawEvent is an untrusted market event as delivered by a source adapter.
// Nothing downstream of the ingestor ever sees one of these.
type RawEvent struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    int64   `json:"volume"`
	Timestamp int64   `json:"timestamp"` // unix seconds or millis, normalized at ingest
	ChangePct float64 `json:"change_pct"`
}

// DataPoint is a validated, normalized market event. Immutable once created.
type DataPoint struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
	ChangePct float64   `json:"change_pct"`
}

// AggregateSnapshot is an internally consistent view of one symbol's
// rolling-window statistics. Readers always get a copy, never a handle
// into engine state.
type AggregateSnapshot struct {
	Symbol      string    `json:"symbol"`
	Count       int       `json:"count"`
	Current     float64   `json:"current"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Avg         float64   `json:"avg"`
	VolumeSum   int64     `json:"volume_sum"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// Severity classifies an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for rule resolution; higher wins.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Alert is an immutable anomaly record appended to the alert log.
type Alert struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Severity        Severity  `json:"severity"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
	TriggeringValue float64   `json:"triggering_value"`
}

// PlatformStats is the GET /stats payload.
type PlatformStats struct {
	DataPoints      int  `json:"data_points"`
	TotalDocuments  int  `json:"total_documents"`
	TotalChunks     int  `json:"total_chunks"`
	TotalAlerts     int  `json:"total_alerts"`
	StreamingActive bool `json:"streaming_active"`
	LLMAvailable    bool `json:"llm_available"`
}
