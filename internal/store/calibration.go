package store

import (
	"database/sql"
	"fmt"

	"aether/internal/types"
)

// GetThreshold returns the stored calibration threshold for language, or
// (0, false) if none has ever been set. Surface.SearchSymbols gives a
// language with no row a weight of zero; the [search]
// calibrated_thresholds config table is not consulted.
func (s *Store) GetThreshold(language string) (float64, bool, error) {
	var threshold float64
	err := s.db.QueryRow(`SELECT threshold FROM calibration WHERE language = ?`, language).Scan(&threshold)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: get_threshold %s: %v", types.ErrStore, language, err)
	}
	return threshold, true, nil
}

// SetThreshold persists a calibration threshold for language.
func (s *Store) SetThreshold(language string, threshold float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO calibration (language, threshold) VALUES (?, ?)
		ON CONFLICT(language) DO UPDATE SET threshold = excluded.threshold`,
		language, threshold)
	if err != nil {
		return fmt.Errorf("%w: set_threshold %s: %v", types.ErrStore, language, err)
	}
	return nil
}
