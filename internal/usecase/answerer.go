package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
	"FinSight/internal/services/retrieval"
	"FinSight/pkg/logger"
)

// QueryAnswerer composes retrieved passages with the freshest computed
// state into a prompt, delegates generation, and packages the response
// with cited sources. Generation failures never surface as errors: the
// caller always gets a response object, degraded if need be.
type QueryAnswerer struct {
	retriever *retrieval.Retriever
	engine    *AggregationEngine
	detector  *AlertDetector
	generator drepo.Generator
	cache     drepo.AnswerCache
	metrics   drepo.Metrics
	log       *logger.Logger

	topK          int
	contextAlerts int
}

func NewQueryAnswerer(
	retriever *retrieval.Retriever,
	engine *AggregationEngine,
	detector *AlertDetector,
	generator drepo.Generator,
	cache drepo.AnswerCache,
	metrics drepo.Metrics,
	log *logger.Logger,
	topK, contextAlerts int,
) *QueryAnswerer {
	if topK <= 0 {
		topK = 5
	}
	if contextAlerts <= 0 {
		contextAlerts = 20
	}
	return &QueryAnswerer{
		retriever:     retriever,
		engine:        engine,
		detector:      detector,
		generator:     generator,
		cache:         cache,
		metrics:       metrics,
		log:           log.With("answerer"),
		topK:          topK,
		contextAlerts: contextAlerts,
	}
}

// Answer runs the full query path for question with k retrieved chunks
// (k <= 0 uses the configured default).
func (qa *QueryAnswerer) Answer(ctx context.Context, question string, k int) (*models.QueryResponse, error) {
	if k <= 0 {
		k = qa.topK
	}
	start := time.Now()
	cacheKey := fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(question)), k)
	if qa.cache != nil {
		if resp, ok := qa.cache.Get(ctx, cacheKey); ok {
			return resp, nil
		}
	}

	results, err := qa.retriever.Retrieve(ctx, question, k)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// retrieval trouble (embedding outage) still yields a degraded
		// answer from live state alone
		qa.metrics.RecordError("retrieve")
		qa.log.Warn("retrieval failed, answering from live state", logger.Error(err))
		results = nil
	}

	sources := collectSources(results)
	prompt := qa.buildPrompt(question, results)

	resp := &models.QueryResponse{
		Question:  question,
		Sources:   sources,
		Timestamp: time.Now().UTC(),
	}

	answer, genErr := qa.generate(ctx, prompt)
	if genErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		qa.metrics.RecordError("generation")
		qa.log.Warn("generation failed, degrading", logger.Error(genErr))
		resp.Answer = qa.degradedAnswer(sources)
		resp.Degraded = true
	} else {
		resp.Answer = answer
	}

	qa.metrics.RecordLatency("query", time.Since(start).Seconds())
	if qa.cache != nil && !resp.Degraded {
		qa.cache.Set(ctx, cacheKey, resp)
	}
	return resp, nil
}

func (qa *QueryAnswerer) generate(ctx context.Context, prompt string) (string, error) {
	if qa.generator == nil || !qa.generator.Available() {
		return "", models.ErrGenerationUnavailable
	}
	out, err := qa.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %s", models.ErrGenerationUnavailable, err)
	}
	return out, nil
}

// buildPrompt combines retrieved chunk texts, current aggregates and
// recent alerts into a single generation prompt.
func (qa *QueryAnswerer) buildPrompt(question string, results []models.RetrievalResult) string {
	var b strings.Builder

	if len(results) > 0 {
		b.WriteString("Context:\n")
		for _, r := range results {
			if ch, ok := qa.retriever.Chunk(r.ChunkID); ok {
				fmt.Fprintf(&b, "Document: %s\n%s\n\n", r.SourceTitle, ch.Text)
			}
		}
	}

	aggs := qa.engine.ReadAll()
	if len(aggs) > 0 {
		b.WriteString("Current Market Data:\n")
		symbols := make([]string, 0, len(aggs))
		for sym := range aggs {
			symbols = append(symbols, sym)
		}
		sort.Strings(symbols)
		for _, sym := range symbols {
			a := aggs[sym]
			fmt.Fprintf(&b, "%s: $%.2f (Avg: $%.2f, Min: $%.2f, Max: $%.2f)\n",
				sym, a.Current, a.Avg, a.Min, a.Max)
		}
		b.WriteString("\n")
	}

	alerts := qa.detector.Recent(qa.contextAlerts)
	if len(alerts) > 0 {
		b.WriteString("Recent Alerts:\n")
		for _, a := range alerts {
			fmt.Fprintf(&b, "- [%s] %s\n", a.Severity, a.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n\nProvide a concise, helpful answer based on the context and real-time data.", question)
	return b.String()
}

func (qa *QueryAnswerer) degradedAnswer(sources []string) string {
	if len(sources) == 0 {
		return "The analysis service is currently unavailable and no matching documents were found. Live market aggregates and alerts remain available via the stream endpoints."
	}
	return fmt.Sprintf("The analysis service is currently unavailable. Based on the retrieved documents, review: %s.",
		strings.Join(sources, "; "))
}

// collectSources returns distinct document titles in first-appearance
// order.
func collectSources(results []models.RetrievalResult) []string {
	seen := make(map[string]struct{}, len(results))
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.SourceTitle == "" {
			continue
		}
		if _, ok := seen[r.SourceTitle]; ok {
			continue
		}
		seen[r.SourceTitle] = struct{}{}
		out = append(out, r.SourceTitle)
	}
	return out
}
