// Package inference implements C8: the pluggable SIR generation
// contract. Grounded on the embedding package's provider-polymorphism
// pattern (internal/embedding/engine.go's interface-plus-factory shape),
// generalized from "embed text" to "summarize a symbol's intent".
package inference

import (
	"context"
	"crypto/sha256"
	"fmt"

	"aether/internal/secret"
	"aether/internal/types"
)

// SirContext is the caller-supplied context accompanying a symbol's
// source text (spec §4.6's "{language, file_path, qualified_name}").
type SirContext struct {
	Language      types.Language
	FilePath      string
	QualifiedName string
}

// Provider is the async generate_sir contract. Implementations may fail
// with a provider-specific error; the pipeline records failure in
// SirMeta rather than retrying (spec §4.6).
type Provider interface {
	GenerateSIR(ctx context.Context, symbolSourceText string, sc SirContext) (types.SIR, error)
	Name() string
}

// Config selects and parameterizes a Provider at startup.
type Config struct {
	Provider string // "mock" | "local" | "cloud"
	Model    string
	Endpoint string
	APIKey   secret.String
}

// New constructs the configured Provider, falling back to Mock if the
// configured kind is unrecognized — "a mock instance is always available
// as fallback" (spec §9).
func New(cfg Config) Provider {
	switch cfg.Provider {
	case "local":
		return NewLocalProvider(cfg.Endpoint, cfg.Model)
	case "cloud":
		return NewCloudProvider(cfg.Endpoint, cfg.APIKey, cfg.Model)
	case "mock", "":
		return NewMockProvider()
	default:
		return NewMockProvider()
	}
}

// deterministicConfidence derives a value in [0.6, 0.8] from name so the
// Mock provider's output is a pure function of its input (spec §4.6).
func deterministicConfidence(name string) float64 {
	sum := sha256.Sum256([]byte(name))
	bucket := int(sum[0]) % 21 // 21 steps of 0.01 spans [0.60, 0.80]
	return 0.60 + float64(bucket)/100.0
}

func wrapErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrProvider, provider, err)
}
