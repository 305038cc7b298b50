package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"FinSight/internal/domain/models"
	"FinSight/internal/service/ratelimit"
	"FinSight/internal/services/retrieval"
	"FinSight/internal/usecase"
	xhttp "FinSight/pkg/http"
	xlogger "FinSight/pkg/logger"
)

// query endpoint budget per client IP
const (
	queryBurst     = 5.0
	queryPerSecond = 1.0
)

// PlatformEchoHandler exposes the streaming and retrieval surfaces
// over Echo.
type PlatformEchoHandler struct {
	logger    *xlogger.Logger
	collector *usecase.EventCollector
	engine    *usecase.AggregationEngine
	detector  *usecase.AlertDetector
	indexer   *retrieval.Indexer
	answerer  *usecase.QueryAnswerer
	llmUp     func() bool
	limiter   *ratelimit.Limiter
}

func NewPlatformEchoHandler(
	logger *xlogger.Logger,
	collector *usecase.EventCollector,
	engine *usecase.AggregationEngine,
	detector *usecase.AlertDetector,
	indexer *retrieval.Indexer,
	answerer *usecase.QueryAnswerer,
	llmUp func() bool,
) *PlatformEchoHandler {
	return &PlatformEchoHandler{
		logger:    logger,
		collector: collector,
		engine:    engine,
		detector:  detector,
		indexer:   indexer,
		answerer:  answerer,
		llmUp:     llmUp,
		limiter:   ratelimit.New(),
	}
}

func (h *PlatformEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stream/data", h.StreamData)
	g.GET("/stream/aggregates", h.StreamAggregates)
	g.GET("/stream/alerts", h.StreamAlerts)
	g.GET("/documents", h.ListDocuments)
	g.POST("/documents", h.CreateDocument)
	g.DELETE("/documents/:id", h.DeleteDocument)
	g.POST("/query", h.Query)
	g.GET("/stats", h.Stats)
}

// StreamData returns the most recent validated data points, newest
// first.
func (h *PlatformEchoHandler) StreamData(c echo.Context) error {
	req := &models.StreamDataRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	points := h.collector.RecentPoints(req.Limit)
	return xhttp.ListResponse(c, points, int64(h.collector.TotalPoints()))
}

// StreamAggregates returns the current rolling-window snapshot per
// symbol.
func (h *PlatformEchoHandler) StreamAggregates(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.ReadAll())
}

// StreamAlerts returns the most recent alerts, newest first.
func (h *PlatformEchoHandler) StreamAlerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	alerts := h.detector.Recent(req.Limit)
	return xhttp.ListResponse(c, alerts, int64(h.detector.Total()))
}

func (h *PlatformEchoHandler) ListDocuments(c echo.Context) error {
	docs := h.indexer.Documents()
	return xhttp.ListResponse(c, docs, int64(len(docs)))
}

// CreateDocument chunks, embeds and indexes a new document.
func (h *PlatformEchoHandler) CreateDocument(c echo.Context) error {
	req := &models.DocumentCreateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	doc := models.SourceDocument{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Category:  req.Category,
		RawText:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	chunks, err := h.indexer.AddDocument(c.Request().Context(), doc)
	if err != nil {
		var corrupt *models.IndexCorruptionError
		if errors.As(err, &corrupt) {
			h.logger.Error("index corruption on add", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("index update failed"))
		}
		h.logger.Error("add document", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]interface{}{
		"document": doc,
		"chunks":   len(chunks),
	})
}

func (h *PlatformEchoHandler) DeleteDocument(c echo.Context) error {
	id := c.Param("id")
	if !h.indexer.RemoveDocument(id) {
		return xhttp.NotFoundResponse(c, xhttp.NotFoundErrorf("document %s not found", id))
	}
	return xhttp.NoContentResponse(c)
}

// Query answers a question over indexed documents plus live state.
// Generation failures degrade the answer rather than erroring.
func (h *PlatformEchoHandler) Query(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), queryBurst, queryPerSecond) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many query requests", http.StatusTooManyRequests))
	}
	req := &models.QueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	resp, err := h.answerer.Answer(c.Request().Context(), req.Question, req.K)
	if err != nil {
		h.logger.Error("query usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *PlatformEchoHandler) Stats(c echo.Context) error {
	docs, chunks := h.indexer.Counts()
	return xhttp.SuccessResponse(c, models.PlatformStats{
		DataPoints:      h.collector.TotalPoints(),
		TotalDocuments:  docs,
		TotalChunks:     chunks,
		TotalAlerts:     h.detector.Total(),
		StreamingActive: h.collector.IsConnected(),
		LLMAvailable:    h.llmUp(),
	})
}
