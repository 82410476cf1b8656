package store

import (
	"database/sql"
	"fmt"

	"aether/internal/logging"
	"aether/internal/types"
)

// UpsertSirMeta writes the freshness/provenance row for a symbol's SIR.
// The blob bytes themselves live in the C3 blob store (blob.go); this row
// is what makes a symbol's SIR status queryable without touching disk.
func (s *Store) UpsertSirMeta(meta *types.SirMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sir_meta (symbol_id, sir_hash, sir_version, provider, model,
			updated_at, sir_status, last_error, last_attempt_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol_id) DO UPDATE SET
			sir_hash = excluded.sir_hash,
			sir_version = excluded.sir_version,
			provider = excluded.provider,
			model = excluded.model,
			updated_at = excluded.updated_at,
			sir_status = excluded.sir_status,
			last_error = excluded.last_error,
			last_attempt_at = excluded.last_attempt_at
	`,
		meta.SymbolID, meta.SirHash, meta.SirVersion, meta.Provider, meta.Model,
		meta.UpdatedAt, string(meta.SirStatus), nullableString(meta.LastError), meta.LastAttemptAt,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert_sir_meta %s: %v", types.ErrStore, meta.SymbolID, err)
	}
	logging.StoreDebug("upserted sir_meta symbol_id=%s status=%s provider=%s", meta.SymbolID, meta.SirStatus, meta.Provider)
	return nil
}

// GetSirMeta returns the freshness/provenance row for symbolID, or
// (nil, nil) if the symbol has never had a SIR attempted.
func (s *Store) GetSirMeta(symbolID string) (*types.SirMeta, error) {
	row := s.db.QueryRow(`SELECT symbol_id, sir_hash, sir_version, provider, model,
		updated_at, sir_status, last_error, last_attempt_at
		FROM sir_meta WHERE symbol_id = ?`, symbolID)

	var meta types.SirMeta
	var status string
	var lastError sql.NullString
	err := row.Scan(&meta.SymbolID, &meta.SirHash, &meta.SirVersion, &meta.Provider, &meta.Model,
		&meta.UpdatedAt, &status, &lastError, &meta.LastAttemptAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get_sir_meta %s: %v", types.ErrStore, symbolID, err)
	}
	meta.SirStatus = types.SirStatus(status)
	meta.LastError = lastError.String
	return &meta, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
