package llm

import (
	"context"
	"fmt"
	"time"

	xhttp "FinSight/pkg/http"
)

// HTTPEmbedder calls an external embedding service. Deterministic for
// identical input by contract of that service; requests carry the
// caller's context plus a hard timeout and are retried once on failure.
type HTTPEmbedder struct {
	baseURL string
	dim     int
	timeout time.Duration
	client  *xhttp.Client
}

func NewHTTPEmbedder(baseURL string, dim int, timeout time.Duration) *HTTPEmbedder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPEmbedder{
		baseURL: baseURL,
		dim:     dim,
		timeout: timeout,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type embedReq struct {
	Text string `json:"text"`
}

type embedResp struct {
	Embedding []float32 `json:"embedding"`
}

func (e *HTTPEmbedder) Dim() int { return e.dim }

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embed after retry: %w", lastErr)
}

func (e *HTTPEmbedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var er embedResp
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     e.baseURL + "/embed",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    embedReq{Text: text},
	}, &er)
	if err != nil {
		return nil, fmt.Errorf("post embed: %w", err)
	}
	if len(er.Embedding) != e.dim {
		return nil, fmt.Errorf("embedding dim %d, want %d", len(er.Embedding), e.dim)
	}
	return er.Embedding, nil
}
