//go:build wireinject
// +build wireinject

package di

import (
	"FinSight/pkg/config"
	"FinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideEventStorage,
		ProvideEventPublisher,
		ProvideEventSource,

		// Streaming use cases
		ProvideAggregationEngine,
		ProvideAlertDetector,
		ProvideEventArchiver,
		ProvideEventCollector,

		// Retrieval
		ProvideEmbedder,
		ProvideGenerator,
		ProvideIndexer,
		ProvideRetriever,
		ProvideAnswerCache,
		ProvideQueryAnswerer,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
