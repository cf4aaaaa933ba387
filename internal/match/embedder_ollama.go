package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// OllamaEmbedder encodes texts through a local Ollama-compatible embedding
// endpoint. Open verifies the endpoint once; after that the embedder is
// safe for concurrent Encode calls for the whole process lifetime.
type OllamaEmbedder struct {
	Host  string
	Model string

	hc       *http.Client
	openOnce sync.Once
	openErr  error
	opened   bool
}

func NewOllamaEmbedder(host, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		Host:  strings.TrimRight(host, "/"),
		Model: model,
		hc:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithTransport swaps the HTTP transport. Test hook.
func (e *OllamaEmbedder) WithTransport(rt http.RoundTripper) {
	e.hc.Transport = rt
}

// Open checks the endpoint is reachable. Idempotent: the verdict of the
// first call sticks.
func (e *OllamaEmbedder) Open(ctx context.Context) error {
	e.openOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Host+"/api/tags", nil)
		if err != nil {
			e.openErr = err
			return
		}
		res, err := e.hc.Do(req)
		if err != nil {
			e.openErr = fmt.Errorf("embedding endpoint unreachable: %w", err)
			return
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			e.openErr = fmt.Errorf("embedding endpoint status %d", res.StatusCode)
			return
		}
		e.opened = true
	})
	return e.openErr
}

func (e *OllamaEmbedder) Close() error {
	e.hc.CloseIdleConnections()
	return nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Encode embeds all texts in a single batch call.
func (e *OllamaEmbedder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if !e.opened {
		return nil, fmt.Errorf("embedder not opened")
	}
	payload, err := json.Marshal(embedRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Host+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed status %d", res.StatusCode)
	}

	var er embedResponse
	if err := json.NewDecoder(res.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}
	if len(er.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed count mismatch: want %d got %d", len(texts), len(er.Embeddings))
	}
	return er.Embeddings, nil
}
