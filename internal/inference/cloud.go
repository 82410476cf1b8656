package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aether/internal/logging"
	"aether/internal/secret"
	"aether/internal/types"
)

// CloudProvider calls a generic bearer-token REST endpoint — "same
// shape" as LocalProvider per spec §4.6, just with an Authorization
// header. Grounded on internal/embedding's CloudEngine.
type CloudProvider struct {
	endpoint string
	model    string
	apiKey   secret.String
	client   *http.Client
}

// NewCloudProvider returns a CloudProvider targeting endpoint with model,
// authenticating with apiKey when non-empty.
func NewCloudProvider(endpoint string, apiKey secret.String, model string) *CloudProvider {
	return &CloudProvider{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *CloudProvider) Name() string { return "cloud:" + p.model }

func (p *CloudProvider) GenerateSIR(ctx context.Context, symbolSourceText string, sc SirContext) (types.SIR, error) {
	reqBody := cloudGenerateRequest{
		Model:  p.model,
		Prompt: buildPrompt(symbolSourceText, sc),
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
	if !p.apiKey.Empty() {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey.Reveal())
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		logging.Get(logging.CategoryInference).Warn("cloud provider request failed for %s: %v", sc.QualifiedName, err)
		return types.SIR{}, wrapErr(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.SIR{}, wrapErr(p.Name(), fmt.Errorf("status %d", resp.StatusCode))
	}

	var sir types.SIR
	if err := json.NewDecoder(resp.Body).Decode(&sir); err != nil {
		return types.SIR{}, wrapErr(p.Name(), err)
	}
	if err := sir.Validate(); err != nil {
		return types.SIR{}, wrapErr(p.Name(), err)
	}
	return sir, nil
}

type cloudGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}
