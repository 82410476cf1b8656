package store

import (
	"database/sql"
	"fmt"

	"aether/internal/logging"
	"aether/internal/types"
)

// UpsertEdges replaces every edge owned by sourceFilePath with edges. It is
// always called as delete-then-insert within one transaction so a file's
// edge set never contains stale entries from a previous parse (spec §4.3).
func (s *Store) UpsertEdges(sourceFilePath string, edges []*types.SymbolEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin upsert_edges: %v", types.ErrStore, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM edges WHERE file_path = ?`, sourceFilePath); err != nil {
		return fmt.Errorf("%w: clear edges for %s: %v", types.ErrStore, sourceFilePath, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO edges (source_id, target_qualified_name, edge_kind, file_path)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert edge: %v", types.ErrStore, err)
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.Exec(e.SourceID, e.TargetQualifiedName, string(e.EdgeKind), e.FilePath); err != nil {
			return fmt.Errorf("%w: insert edge %s->%s: %v", types.ErrStore, e.SourceID, e.TargetQualifiedName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert_edges: %v", types.ErrStore, err)
	}
	logging.StoreDebug("upserted %d edges for file=%s", len(edges), sourceFilePath)
	return nil
}

// DeleteEdgesForFile removes every edge owned by filePath, used when a
// file is removed entirely.
func (s *Store) DeleteEdgesForFile(filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM edges WHERE file_path = ?`, filePath); err != nil {
		return fmt.Errorf("%w: delete_edges_for_file %s: %v", types.ErrStore, filePath, err)
	}
	return nil
}

// EdgesFromSource returns every edge owned by sourceID.
func (s *Store) EdgesFromSource(sourceID string) ([]*types.SymbolEdge, error) {
	rows, err := s.db.Query(`SELECT source_id, target_qualified_name, edge_kind, file_path
		FROM edges WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: edges_from_source %s: %v", types.ErrStore, sourceID, err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// EdgesToTarget returns every edge whose target_qualified_name equals
// targetQualifiedName — the reverse index used by get_callers.
func (s *Store) EdgesToTarget(targetQualifiedName string) ([]*types.SymbolEdge, error) {
	rows, err := s.db.Query(`SELECT source_id, target_qualified_name, edge_kind, file_path
		FROM edges WHERE target_qualified_name = ?`, targetQualifiedName)
	if err != nil {
		return nil, fmt.Errorf("%w: edges_to_target %s: %v", types.ErrStore, targetQualifiedName, err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]*types.SymbolEdge, error) {
	var out []*types.SymbolEdge
	for rows.Next() {
		var e types.SymbolEdge
		var kind string
		if err := rows.Scan(&e.SourceID, &e.TargetQualifiedName, &kind, &e.FilePath); err != nil {
			return nil, fmt.Errorf("%w: scan edge row: %v", types.ErrStore, err)
		}
		e.EdgeKind = types.EdgeKind(kind)
		out = append(out, &e)
	}
	return out, rows.Err()
}
