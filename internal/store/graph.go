package store

import (
	"database/sql"
	"fmt"
	"sort"

	"aether/internal/types"
)

// GetCallers returns every symbol with a `calls` edge targeting
// qualifiedName, ordered qualified_name asc, id asc (spec §4.2).
func (s *Store) GetCallers(qualifiedName string) ([]*types.Symbol, error) {
	edges, err := s.EdgesToTarget(qualifiedName)
	if err != nil {
		return nil, err
	}

	var out []*types.Symbol
	for _, e := range edges {
		if e.EdgeKind != types.EdgeCalls {
			continue
		}
		sym, err := s.GetSymbolRecord(e.SourceID)
		if err != nil {
			return nil, fmt.Errorf("%w: get_callers resolve %s: %v", types.ErrStore, e.SourceID, err)
		}
		if sym == nil {
			continue
		}
		out = append(out, sym)
	}
	sortSymbols(out)
	return out, nil
}

// GetDependencies returns the symbols a symbol depends on, joining its
// outgoing `calls` edges by qualified name. Unresolved external targets (e.g.
// "external::thing", which never appears as a symbol's own
// qualified_name) silently disappear from the result — spec §9 leaves
// surfacing them as "external" an open question, decided here as: omit.
func (s *Store) GetDependencies(symbolID string) ([]*types.Symbol, error) {
	edges, err := s.EdgesFromSource(symbolID)
	if err != nil {
		return nil, err
	}

	var out []*types.Symbol
	for _, e := range edges {
		if e.EdgeKind != types.EdgeCalls {
			continue
		}
		sym, err := s.symbolByQualifiedName(e.TargetQualifiedName)
		if err != nil {
			return nil, fmt.Errorf("%w: get_dependencies resolve %s: %v", types.ErrStore, e.TargetQualifiedName, err)
		}
		if sym == nil {
			continue
		}
		out = append(out, sym)
	}
	sortSymbols(out)
	return out, nil
}

// GetCallChain performs a breadth-first walk of `calls` edges starting at
// symbolID, returning up to depth levels; the walk stops after the first
// level that finds no new symbol. At each depth the minimum-hop
// occurrence of a symbol is kept: a symbol already emitted at an earlier
// level never reappears at a later one (spec §4.2, example S5).
func (s *Store) GetCallChain(symbolID string, depth int) ([][]*types.Symbol, error) {
	return s.bfsLevels(symbolID, depth, s.calleesOf)
}

// BlastRadius walks `calls` edges in the reverse (callers) direction and
// flattens every level into a single deduplicated set — the
// "external terminology built on the call-chain primitive" operation
// named in the glossary.
func (s *Store) BlastRadius(symbolID string, depth int) ([]*types.Symbol, error) {
	levels, err := s.bfsLevels(symbolID, depth, s.callersOf)
	if err != nil {
		return nil, err
	}
	var flat []*types.Symbol
	for _, level := range levels {
		flat = append(flat, level...)
	}
	sortSymbols(flat)
	return flat, nil
}

// neighborFunc resolves the next BFS frontier for a symbol id.
type neighborFunc func(id string) ([]*types.Symbol, error)

func (s *Store) calleesOf(id string) ([]*types.Symbol, error) {
	edges, err := s.EdgesFromSource(id)
	if err != nil {
		return nil, err
	}
	var out []*types.Symbol
	for _, e := range edges {
		if e.EdgeKind != types.EdgeCalls {
			continue
		}
		sym, err := s.symbolByQualifiedName(e.TargetQualifiedName)
		if err != nil {
			return nil, err
		}
		if sym != nil {
			out = append(out, sym)
		}
	}
	return out, nil
}

func (s *Store) callersOf(id string) ([]*types.Symbol, error) {
	sym, err := s.GetSymbolRecord(id)
	if err != nil || sym == nil {
		return nil, err
	}
	return s.GetCallers(sym.QualifiedName)
}

// bfsLevels is the shared min-hop-per-level BFS engine: a symbol id seen
// at any earlier level (or the root) is excluded from every later one.
func (s *Store) bfsLevels(rootID string, depth int, neighbors neighborFunc) ([][]*types.Symbol, error) {
	if depth < 1 {
		return nil, nil
	}

	seen := map[string]bool{rootID: true}
	frontier := []string{rootID}
	levels := make([][]*types.Symbol, 0, depth)

	for d := 0; d < depth; d++ {
		var levelSyms []*types.Symbol
		var nextFrontier []string

		for _, id := range frontier {
			syms, err := neighbors(id)
			if err != nil {
				return nil, err
			}
			for _, sym := range syms {
				if seen[sym.ID] {
					continue
				}
				seen[sym.ID] = true
				levelSyms = append(levelSyms, sym)
				nextFrontier = append(nextFrontier, sym.ID)
			}
		}

		sortSymbols(levelSyms)
		levels = append(levels, levelSyms)
		if len(nextFrontier) == 0 {
			break
		}
		frontier = nextFrontier
	}

	return levels, nil
}

func (s *Store) symbolByQualifiedName(qualifiedName string) (*types.Symbol, error) {
	row := s.db.QueryRow(`
		SELECT id, language, file_path, kind, name, qualified_name,
			signature_fingerprint, content_hash, start_line, start_col, end_line, end_col
		FROM symbols WHERE qualified_name = ? ORDER BY id ASC LIMIT 1`, qualifiedName)
	sym, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sym, nil
}

func sortSymbols(syms []*types.Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].QualifiedName != syms[j].QualifiedName {
			return syms[i].QualifiedName < syms[j].QualifiedName
		}
		return syms[i].ID < syms[j].ID
	})
}
