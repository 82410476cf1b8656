package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aether/internal/logging"
	"aether/internal/types"
)

// LocalProvider calls an Ollama-style local HTTP endpoint: POST a prompt,
// parse a structured JSON body into the SIR shape, validate (spec §4.6).
// Grounded on internal/embedding's OllamaEngine request/response pattern.
type LocalProvider struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewLocalProvider returns a LocalProvider targeting endpoint with model.
func NewLocalProvider(endpoint, model string) *LocalProvider {
	if model == "" {
		model = "llama3.1"
	}
	return &LocalProvider{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *LocalProvider) Name() string { return "local:" + p.model }

func (p *LocalProvider) GenerateSIR(ctx context.Context, symbolSourceText string, sc SirContext) (types.SIR, error) {
	reqBody := localGenerateRequest{
		Model:  p.model,
		Prompt: buildPrompt(symbolSourceText, sc),
		Format: "json",
		Stream: false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return types.SIR{}, wrapErr(p.Name(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.SIR{}, wrapErr(p.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		logging.Get(logging.CategoryInference).Warn("local provider request failed for %s: %v", sc.QualifiedName, err)
		return types.SIR{}, wrapErr(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SIR{}, wrapErr(p.Name(), fmt.Errorf("status %d", resp.StatusCode))
	}

	var raw localGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.SIR{}, wrapErr(p.Name(), err)
	}

	var sir types.SIR
	if err := json.Unmarshal([]byte(raw.Response), &sir); err != nil {
		return types.SIR{}, wrapErr(p.Name(), fmt.Errorf("decode sir body: %w", err))
	}
	if err := sir.Validate(); err != nil {
		return types.SIR{}, wrapErr(p.Name(), err)
	}
	return sir, nil
}

func buildPrompt(symbolSourceText string, sc SirContext) string {
	return fmt.Sprintf(
		"Summarize the intent of this %s symbol %q in %s.\n"+
			"Respond as JSON with keys intent, inputs, outputs, side_effects, dependencies, error_modes, confidence.\n\n%s",
		sc.Language, sc.QualifiedName, sc.FilePath, symbolSourceText,
	)
}

type localGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type localGenerateResponse struct {
	Response string `json:"response"`
}
