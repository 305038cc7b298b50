package di

import (
	"context"
	"fmt"
	"time"

	drepo "FinSight/internal/domain/repository"
	"FinSight/internal/handler/api"
	internalrepo "FinSight/internal/repository"
	icache "FinSight/internal/service/cache"
	"FinSight/internal/service/feed"
	"FinSight/internal/service/kafkasource"
	"FinSight/internal/service/simulator"
	"FinSight/internal/services/llm"
	"FinSight/internal/services/retrieval"
	"FinSight/internal/usecase"
	pkgch "FinSight/pkg/clickhouse"
	"FinSight/pkg/config"
	xhttp "FinSight/pkg/http"
	pkgkafka "FinSight/pkg/kafka"
	"FinSight/pkg/logger"
	"FinSight/pkg/metrics"
	"FinSight/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client when the archive
// backend needs one.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Archive.Backend != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".market_events (ts DateTime, symbol String, price Float64, volume Int64, change_pct Float64) ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer when any kafka path is
// configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Archive.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventStorage creates ClickHouse storage when wired.
func ProvideEventStorage(chClient *pkgch.Client, cfg *config.Config) drepo.Storage {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".market_events")
}

// ProvideEventPublisher creates the Kafka publisher when wired.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic, cfg.Kafka.AlertsTopic)
}

// ProvideEventSource selects the source adapter from config.
func ProvideEventSource(cfg *config.Config, log *logger.Logger) (drepo.EventSource, error) {
	switch cfg.Source.Type {
	case "websocket":
		return feed.New(
			cfg.Source.WebSocket.APIKey,
			cfg.Source.WebSocket.URL,
			cfg.Source.Symbols,
			cfg.Source.WebSocket.ReconnectDelay,
			cfg.Source.WebSocket.PingInterval,
			log,
		), nil
	case "kafka":
		return kafkasource.New(kafkasource.Config{
			Brokers:    cfg.Kafka.Brokers,
			Topic:      cfg.Kafka.EventsTopic,
			GroupID:    cfg.Kafka.Consumer.GroupID,
			Workers:    cfg.Kafka.Consumer.Workers,
			BufferSize: cfg.Kafka.Consumer.BufferSize,
			RetryMax:   cfg.Kafka.Consumer.RetryMax,
			BackoffMin: cfg.Kafka.Consumer.BackoffMin,
			BackoffMax: cfg.Kafka.Consumer.BackoffMax,
			DLQTopic:   cfg.Kafka.Consumer.DLQTopic,
		})
	default:
		return simulator.New(cfg.Source.Symbols, cfg.Source.TickInterval), nil
	}
}

// ProvideAggregationEngine creates the per-symbol windowed engine.
func ProvideAggregationEngine(cfg *config.Config) *usecase.AggregationEngine {
	return usecase.NewAggregationEngine(cfg.Window.Size)
}

// ProvideAlertDetector creates the rule-based detector.
func ProvideAlertDetector(cfg *config.Config) *usecase.AlertDetector {
	rules := usecase.DefaultRules(usecase.AlertRulesConfig{
		HighChangePct:   cfg.Alerts.HighChangePct,
		MediumChangePct: cfg.Alerts.MediumChangePct,
		VolumeSpikeMult: cfg.Alerts.VolumeSpikeMult,
	})
	return usecase.NewAlertDetector(rules, cfg.Alerts.Retention)
}

// ProvideEventArchiver creates the write-behind archiver.
func ProvideEventArchiver(pub drepo.Publisher, store drepo.Storage, m drepo.Metrics, cfg *config.Config) *usecase.EventArchiver {
	return usecase.NewEventArchiver(pub, store, m, cfg.Archive.Backend, cfg.Archive.BatchSize)
}

// ProvideEventCollector creates the producer-path collector.
func ProvideEventCollector(
	source drepo.EventSource,
	engine *usecase.AggregationEngine,
	detector *usecase.AlertDetector,
	archiver *usecase.EventArchiver,
	m drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.EventCollector {
	return usecase.NewEventCollector(
		source,
		usecase.NewEventIngestor(),
		engine,
		detector,
		archiver,
		m,
		log,
		cfg.Source.Workers,
		cfg.Source.BufferSize,
		cfg.Window.RecentPoints,
	)
}

// ProvideEmbedder selects the embedder from config.
func ProvideEmbedder(cfg *config.Config) drepo.Embedder {
	if cfg.Index.Embedder.Type == "http" {
		return llm.NewHTTPEmbedder(cfg.Index.Embedder.URL, cfg.Index.Embedder.Dim, cfg.Index.Embedder.Timeout)
	}
	return llm.NewHashEmbedder(cfg.Index.Embedder.Dim)
}

// ProvideGenerator creates the LLM generator. Missing credentials mean
// a generator that reports unavailable, not an error.
func ProvideGenerator(cfg *config.Config) (drepo.Generator, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return llm.NewOpenAIGenerator(ctx, llm.GeneratorConfig{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	})
}

// ProvideIndexer creates the hybrid document indexer.
func ProvideIndexer(embedder drepo.Embedder, m drepo.Metrics, cfg *config.Config) *retrieval.Indexer {
	chunker := retrieval.NewChunker(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	return retrieval.NewIndexer(chunker, embedder, m)
}

// ProvideRetriever creates the hybrid retriever.
func ProvideRetriever(ix *retrieval.Indexer, embedder drepo.Embedder, cfg *config.Config) *retrieval.Retriever {
	return retrieval.NewRetriever(ix, embedder, cfg.Retriever.VectorK, cfg.Retriever.LexicalK, cfg.Retriever.VectorWeight)
}

// ProvideAnswerCache selects the cache backend; nil when disabled.
func ProvideAnswerCache(cfg *config.Config) drepo.AnswerCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Backend == "redis" {
		return icache.NewRedisAnswerCache(icache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		})
	}
	return icache.NewMemoryAnswerCache(cfg.Cache.TTL)
}

// ProvideQueryAnswerer creates the query use case.
func ProvideQueryAnswerer(
	retriever *retrieval.Retriever,
	engine *usecase.AggregationEngine,
	detector *usecase.AlertDetector,
	generator drepo.Generator,
	cache drepo.AnswerCache,
	m drepo.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.QueryAnswerer {
	return usecase.NewQueryAnswerer(retriever, engine, detector, generator, cache, m, log, 5, cfg.LLM.ContextAlerts)
}

// ProvideHTTPHandler creates the Echo platform handler.
func ProvideHTTPHandler(
	log *logger.Logger,
	collector *usecase.EventCollector,
	engine *usecase.AggregationEngine,
	detector *usecase.AlertDetector,
	ix *retrieval.Indexer,
	answerer *usecase.QueryAnswerer,
	generator drepo.Generator,
) xhttp.Handler {
	return api.NewPlatformEchoHandler(log, collector, engine, detector, ix, answerer, generator.Available)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.EventCollector,
	archiver *usecase.EventArchiver,
	ix *retrieval.Indexer,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, collector, archiver, ix, chClient, handler)
}
