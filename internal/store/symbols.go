package store

import (
	"database/sql"
	"fmt"

	"aether/internal/logging"
	"aether/internal/types"
)

// UpsertSymbol creates or overwrites the row for sym.ID. Calling it twice
// with an equal record leaves exactly one row equal to it (spec §8 law 3).
func (s *Store) UpsertSymbol(sym *types.Symbol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO symbols (id, language, file_path, kind, name, qualified_name,
			signature_fingerprint, content_hash, start_line, start_col, end_line, end_col)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			language = excluded.language,
			file_path = excluded.file_path,
			kind = excluded.kind,
			name = excluded.name,
			qualified_name = excluded.qualified_name,
			signature_fingerprint = excluded.signature_fingerprint,
			content_hash = excluded.content_hash,
			start_line = excluded.start_line,
			start_col = excluded.start_col,
			end_line = excluded.end_line,
			end_col = excluded.end_col
	`,
		sym.ID, string(sym.Language), sym.FilePath, string(sym.Kind), sym.Name, sym.QualifiedName,
		sym.SignatureFingerprint, sym.ContentHash,
		sym.Range.StartLine, sym.Range.StartCol, sym.Range.EndLine, sym.Range.EndCol,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert symbol %s: %v", types.ErrStore, sym.ID, err)
	}
	logging.StoreDebug("upserted symbol id=%s qualified_name=%s", sym.ID, sym.QualifiedName)
	return nil
}

// MarkRemoved deletes the symbol row, its owned edges, and its SIR meta
// row. The SIR blob itself is the caller's (pipeline's) responsibility —
// see spec §4.7 step 1, which orders blob deletion alongside this call.
func (s *Store) MarkRemoved(symbolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin mark_removed: %v", types.ErrStore, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM symbols WHERE id = ?`, symbolID); err != nil {
		return fmt.Errorf("%w: delete symbol %s: %v", types.ErrStore, symbolID, err)
	}
	if _, err := tx.Exec(`DELETE FROM sir_meta WHERE symbol_id = ?`, symbolID); err != nil {
		return fmt.Errorf("%w: delete sir_meta %s: %v", types.ErrStore, symbolID, err)
	}
	if _, err := tx.Exec(`DELETE FROM edges WHERE source_id = ?`, symbolID); err != nil {
		return fmt.Errorf("%w: delete edges for %s: %v", types.ErrStore, symbolID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit mark_removed: %v", types.ErrStore, err)
	}
	logging.StoreDebug("removed symbol id=%s", symbolID)
	return nil
}

// GetSymbolRecord returns the symbol row for id, or (nil, nil) if absent.
func (s *Store) GetSymbolRecord(id string) (*types.Symbol, error) {
	row := s.db.QueryRow(`
		SELECT id, language, file_path, kind, name, qualified_name,
			signature_fingerprint, content_hash, start_line, start_col, end_line, end_col
		FROM symbols WHERE id = ?`, id)
	sym, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get_symbol_record %s: %v", types.ErrStore, id, err)
	}
	return sym, nil
}

// ListSymbolsForFile returns every symbol currently stored for path,
// ordered by qualified_name for determinism.
func (s *Store) ListSymbolsForFile(filePath string) ([]*types.Symbol, error) {
	rows, err := s.db.Query(`
		SELECT id, language, file_path, kind, name, qualified_name,
			signature_fingerprint, content_hash, start_line, start_col, end_line, end_col
		FROM symbols WHERE file_path = ? ORDER BY qualified_name ASC, id ASC`, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: list_symbols_for_file %s: %v", types.ErrStore, filePath, err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

// SearchSymbols performs a case-insensitive substring match against
// id|qualified_name|file_path|language|kind, ordered by qualified_name
// then id, limit clamped to [1,100]. An empty/whitespace query returns no
// results (spec §4.2).
func (s *Store) SearchSymbols(query string, limit int) ([]*types.Symbol, error) {
	trimmed := trimQuery(query)
	if trimmed == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	like := "%" + trimmed + "%"
	rows, err := s.db.Query(`
		SELECT id, language, file_path, kind, name, qualified_name,
			signature_fingerprint, content_hash, start_line, start_col, end_line, end_col
		FROM symbols
		WHERE id LIKE ? COLLATE NOCASE
		   OR qualified_name LIKE ? COLLATE NOCASE
		   OR file_path LIKE ? COLLATE NOCASE
		   OR language LIKE ? COLLATE NOCASE
		   OR kind LIKE ? COLLATE NOCASE
		ORDER BY qualified_name ASC, id ASC
		LIMIT ?`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search_symbols %q: %v", types.ErrStore, query, err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func trimQuery(q string) string {
	start, end := 0, len(q)
	for start < end && isSpace(q[start]) {
		start++
	}
	for end > start && isSpace(q[end-1]) {
		end--
	}
	return q[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSymbol(row rowScanner) (*types.Symbol, error) {
	var sym types.Symbol
	var language, kind string
	if err := row.Scan(&sym.ID, &language, &sym.FilePath, &kind, &sym.Name, &sym.QualifiedName,
		&sym.SignatureFingerprint, &sym.ContentHash,
		&sym.Range.StartLine, &sym.Range.StartCol, &sym.Range.EndLine, &sym.Range.EndCol); err != nil {
		return nil, err
	}
	sym.Language = types.Language(language)
	sym.Kind = types.Kind(kind)
	return &sym, nil
}

func scanSymbols(rows *sql.Rows) ([]*types.Symbol, error) {
	var out []*types.Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan symbol row: %v", types.ErrStore, err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}
