package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FinSight/internal/services/retrieval"
	"FinSight/internal/usecase"
	pkgch "FinSight/pkg/clickhouse"
	"FinSight/pkg/config"
	xhttp "FinSight/pkg/http"
	applogger "FinSight/pkg/logger"
)

// App encapsulates the platform lifecycle: event collection, knowledge
// base seeding, the HTTP surface, and graceful shutdown.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  *usecase.EventCollector
	archiver   *usecase.EventArchiver
	indexer    *retrieval.Indexer
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.EventCollector,
	archiver *usecase.EventArchiver,
	indexer *retrieval.Indexer,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	httpServer := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:        cfg,
		log:        log,
		collector:  collector,
		archiver:   archiver,
		indexer:    indexer,
		chClient:   chClient,
		httpServer: httpServer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.cfg.Index.SeedDocuments {
		if err := retrieval.SeedKnowledgeBase(ctx, a.indexer); err != nil {
			a.log.Warn("knowledge base seed error", applogger.Error(err))
		} else {
			docs, chunks := a.indexer.Counts()
			a.log.Info("knowledge base seeded",
				applogger.Int("documents", docs),
				applogger.Int("chunks", chunks))
		}
	}

	a.archiver.Start(ctx)

	if err := a.collector.Start(ctx); err != nil {
		a.log.Error("collector start error", applogger.Error(err))
		return err
	}
	a.log.Info("collector started",
		applogger.String("source", a.cfg.Source.Type),
		applogger.Strings("symbols", a.cfg.Source.Symbols))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.archiver.Close()

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
