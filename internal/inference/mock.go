package inference

import (
	"context"
	"fmt"

	"aether/internal/types"
)

// MockProvider returns a deterministic SIR embedding the symbol's name
// into the intent field. Used for tests and whenever no real provider is
// configured (spec §4.6).
type MockProvider struct{}

// NewMockProvider returns a MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) GenerateSIR(ctx context.Context, symbolSourceText string, sc SirContext) (types.SIR, error) {
	name := sc.QualifiedName
	return types.SIR{
		Intent:       fmt.Sprintf("Mock summary for %s", name),
		Inputs:       []string{},
		Outputs:      []string{},
		SideEffects:  []string{},
		Dependencies: []string{},
		ErrorModes:   []string{},
		Confidence:   deterministicConfidence(name),
	}, nil
}
