package types

import "strings"

// SIR (Semantic Intent Record) is a fixed-shape, model-generated summary
// of a symbol's intent, inputs, outputs, side effects, dependencies, and
// error modes, plus a confidence score.
type SIR struct {
	Intent       string   `json:"intent"`
	Inputs       []string `json:"inputs"`
	Outputs      []string `json:"outputs"`
	SideEffects  []string `json:"side_effects"`
	Dependencies []string `json:"dependencies"`
	ErrorModes   []string `json:"error_modes"`
	Confidence   float64  `json:"confidence"`
}

// Validate checks the invariants from spec §3: intent non-empty after
// trim, confidence within [0.0, 1.0].
func (s SIR) Validate() error {
	if strings.TrimSpace(s.Intent) == "" {
		return ErrEmptyIntent
	}
	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return ErrConfidenceOutOfRange
	}
	return nil
}

// SirStatus is the two terminal states of a SIR relative to the latest
// symbol version.
type SirStatus string

const (
	SirFresh SirStatus = "fresh"
	SirStale SirStatus = "stale"
)

// SirMeta is the per-symbol metadata row tracked alongside the blob.
type SirMeta struct {
	SymbolID      string    `json:"symbol_id"`
	SirHash       string    `json:"sir_hash"`
	SirVersion    int       `json:"sir_version"` // monotonic, >= 1
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	UpdatedAt     int64     `json:"updated_at"`
	SirStatus     SirStatus `json:"sir_status"`
	LastError     string    `json:"last_error,omitempty"`
	LastAttemptAt int64     `json:"last_attempt_at"`
}

// IsFresh reports whether the SIR status is fresh with no recorded error,
// the invariant from spec §3 ("if sir_status = fresh then last_error is
// absent").
func (m SirMeta) IsFresh() bool {
	return m.SirStatus == SirFresh && m.LastError == ""
}
