package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aether/internal/logging"
	"aether/internal/secret"
)

// =============================================================================
// CLOUD EMBEDDING ENGINE
// =============================================================================

// CloudEngine generates embeddings via a generic bearer-token REST endpoint.
// It does not target a specific vendor SDK; the request/response shape
// mirrors the common "array of floats per input" convention used by most
// hosted embedding APIs.
type CloudEngine struct {
	endpoint string
	model    string
	apiKey   secret.String
	client   *http.Client
}

// NewCloudEngine creates a new cloud embedding engine.
func NewCloudEngine(endpoint, apiKey, model string) (*CloudEngine, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "NewCloudEngine")
	defer timer.Stop()

	if endpoint == "" {
		return nil, fmt.Errorf("cloud embedding endpoint is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
		logging.EmbeddingDebug("Cloud embedding model defaulted to: %s", model)
	}

	logging.Embedding("Creating cloud embedding engine: endpoint=%s, model=%s, timeout=30s", endpoint, model)

	return &CloudEngine{
		endpoint: endpoint,
		model:    model,
		apiKey:   secret.New(apiKey),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Embed generates an embedding for a single text.
func (e *CloudEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	results, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("cloud embedding: empty response")
	}
	return results[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single request.
func (e *CloudEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "Cloud.EmbedBatch")
	defer timer.Stop()

	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := cloudEmbedRequest{
		Model: e.model,
		Input: texts,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if !e.apiKey.Empty() {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey.Reveal())
	}

	apiStart := time.Now()
	resp, err := e.client.Do(httpReq)
	apiLatency := time.Since(apiStart)
	if err != nil {
		logging.Get(logging.CategoryEmbedding).Error("Cloud.EmbedBatch: request failed after %v: %v", apiLatency, err)
		return nil, fmt.Errorf("cloud embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logging.Get(logging.CategoryEmbedding).Error("Cloud.EmbedBatch: non-OK status %d", resp.StatusCode)
		return nil, fmt.Errorf("cloud embedding returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result cloudEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([][]float32, len(result.Data))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(out) {
			continue
		}
		out[item.Index] = item.Embedding
	}

	logging.Embedding("Cloud.EmbedBatch: completed, texts=%d, api_latency=%v", len(texts), apiLatency)
	return out, nil
}

// Dimensions returns the dimensionality of embeddings produced by this model.
func (e *CloudEngine) Dimensions() int {
	return 1536
}

// Name returns the engine name.
func (e *CloudEngine) Name() string {
	return fmt.Sprintf("cloud:%s", e.model)
}

// HealthCheck verifies the cloud endpoint is reachable and accepting requests.
func (e *CloudEngine) HealthCheck(ctx context.Context) error {
	_, err := e.Embed(ctx, "health check")
	return err
}

type cloudEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type cloudEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}
