package types

import "errors"

// Sentinel errors for the four kinds distinguished in spec §7.
var (
	// Invalid input — rejected at the API boundary.
	ErrEmptyIntent          = errors.New("sir: intent must be non-empty")
	ErrConfidenceOutOfRange = errors.New("sir: confidence must be within [0.0, 1.0]")
	ErrEmptyContent         = errors.New("input: content must be non-empty")

	// Store error — propagated, aborts the event's remaining writes.
	ErrStore = errors.New("store: operation failed")

	// Provider error — recorded in SirMeta, does not abort the event.
	ErrProvider = errors.New("provider: generation failed")

	// I/O error on blob write — treated identically to provider error.
	ErrBlobIO = errors.New("blob: write failed")
)
