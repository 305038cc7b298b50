package repository

import (
	"context"

	"FinSight/internal/domain/models"
)

// EventSource delivers raw market events. Transport-agnostic: the
// simulator, the WebSocket feed, and the Kafka consumer all satisfy it.
type EventSource interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.RawEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher fans out validated points or alerts to a broker.
type Publisher interface {
	PublishPoint(ctx context.Context, dp *models.DataPoint) error
	PublishAlert(ctx context.Context, a *models.Alert) error
	Close() error
}

// Storage archives validated data points. Write-behind only: the
// aggregation engine never reads it back.
type Storage interface {
	Store(ctx context.Context, dp *models.DataPoint) error
	StoreBatch(ctx context.Context, dps []*models.DataPoint) error
	Health(ctx context.Context) error
	Close() error
}

// Embedder maps text to a fixed-dimension vector. Deterministic for
// identical input; used identically for chunks and questions.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

// Generator turns a prompt into answer text. Treated as unreliable:
// callers bound it with a timeout and at most one retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Available() bool
}

// AnswerCache caches query responses by normalized question.
type AnswerCache interface {
	Get(ctx context.Context, key string) (*models.QueryResponse, bool)
	Set(ctx context.Context, key string, resp *models.QueryResponse)
}

// Metrics records operational counters and latencies.
type Metrics interface {
	RecordEventIngested(source, symbol string)
	RecordAlert(symbol string, severity models.Severity)
	RecordChunksIndexed(n int)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
