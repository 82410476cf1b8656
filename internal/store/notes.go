package store

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"aether/internal/logging"
	"aether/internal/types"
)

// UpsertNote inserts note, or — if a row with the same content_key already
// exists — returns the existing row's id unchanged, leaving its
// created_at and embedding untouched. This is the "idempotent upsert,
// case-folded dedup" behavior from spec §3.
func (s *Store) UpsertNote(note *types.Note) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existingID string
	err := s.db.QueryRow(`SELECT id FROM notes WHERE content_key = ?`, note.ContentKey).Scan(&existingID)
	if err == nil {
		logging.StoreDebug("note content_key=%s already present as id=%s, skipping insert", note.ContentKey, existingID)
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("%w: upsert_note lookup %s: %v", types.ErrStore, note.ContentKey, err)
	}

	tagsJSON, jerr := json.Marshal(note.Tags)
	if jerr != nil {
		tagsJSON = []byte("[]")
	}
	embedding := encodeEmbedding(note.Embedding)

	_, err = s.db.Exec(`INSERT INTO notes (id, content, content_key, tags,
		embedding_provider, embedding_model, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.Content, note.ContentKey, string(tagsJSON),
		nullableString(note.EmbeddingProvider), nullableString(note.EmbeddingModel), embedding, note.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("%w: upsert_note insert %s: %v", types.ErrStore, note.ID, err)
	}
	logging.StoreDebug("inserted note id=%s", note.ID)
	return note.ID, nil
}

// GetNote returns the note with id, or (nil, nil) if absent.
func (s *Store) GetNote(id string) (*types.Note, error) {
	row := s.db.QueryRow(`SELECT id, content, content_key, tags,
		embedding_provider, embedding_model, embedding, created_at FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get_note %s: %v", types.ErrStore, id, err)
	}
	return note, nil
}

// SearchNotes performs a case-insensitive substring match against content,
// newest first, limit clamped to [1,100].
func (s *Store) SearchNotes(query string, limit int) ([]*types.Note, error) {
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

	rows, err := s.db.Query(`SELECT id, content, content_key, tags,
		embedding_provider, embedding_model, embedding, created_at
		FROM notes WHERE content LIKE ? COLLATE NOCASE
		ORDER BY created_at DESC LIMIT ?`, "%"+trimmed+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search_notes %q: %v", types.ErrStore, query, err)
	}
	defer rows.Close()

	var out []*types.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan note row: %v", types.ErrStore, err)
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

// ListEmbeddedNotes returns up to limit notes that carry a vector
// embedding, newest first — the candidate set for semantic ranking.
func (s *Store) ListEmbeddedNotes(limit int) ([]*types.Note, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}
	rows, err := s.db.Query(`SELECT id, content, content_key, tags,
		embedding_provider, embedding_model, embedding, created_at
		FROM notes WHERE embedding IS NOT NULL
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list_embedded_notes: %v", types.ErrStore, err)
	}
	defer rows.Close()

	var out []*types.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan note row: %v", types.ErrStore, err)
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

func scanNote(row rowScanner) (*types.Note, error) {
	var note types.Note
	var tagsJSON string
	var provider, model sql.NullString
	var embedding []byte
	if err := row.Scan(&note.ID, &note.Content, &note.ContentKey, &tagsJSON,
		&provider, &model, &embedding, &note.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &note.Tags); err != nil {
		note.Tags = nil
	}
	note.EmbeddingProvider = provider.String
	note.EmbeddingModel = model.String
	note.Embedding = decodeEmbedding(embedding)
	return &note, nil
}

// encodeEmbedding packs a []float32 into a little-endian byte blob for
// sqlite storage; nil/empty vectors encode as nil (no BLOB row).
func encodeEmbedding(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	for _, f := range v {
		binary.Write(buf, binary.LittleEndian, math.Float32bits(f))
	}
	return buf.Bytes()
}

func decodeEmbedding(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
