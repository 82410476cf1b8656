// Package search implements C10: the read-only surface that higher
// layers (CLI, editor integrations) use to query the symbol graph and
// SIR annotations built by C9.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"aether/internal/embedding"
	"aether/internal/ident"
	"aether/internal/logging"
	"aether/internal/store"
	"aether/internal/types"
)

// Surface wraps the metadata store and blob store behind the operations
// spec §4.8 exposes to callers, plus the note-store CRUD surface
// supplementing the in-scope pipeline/search surface (SPEC_FULL.md's
// "Note store" addition).
type Surface struct {
	store  *store.Store
	blobs  *store.BlobStore
	embeds embedding.EmbeddingEngine // nil when [embeddings] enabled = false
}

// New returns a Surface backed by st and blobs. embeds may be nil, in
// which case AddNote stores notes without a vector embedding.
func New(st *store.Store, blobs *store.BlobStore, embeds embedding.EmbeddingEngine) *Surface {
	return &Surface{store: st, blobs: blobs, embeds: embeds}
}

// SearchSymbols runs C2's substring search and then applies the
// per-language calibration bias from the calibration table (spec §4.2,
// "calibration table as described in §3"): languages with a higher
// calibrated threshold are stable-sorted ahead of languages with a lower
// or absent one, preserving the store's own ordering within a language
// and for any query with no calibration rows at all.
func (s *Surface) SearchSymbols(query string, limit int) ([]*types.Symbol, error) {
	matches, err := s.store.SearchSymbols(query, limit)
	if err != nil {
		return nil, err
	}
	if len(matches) < 2 {
		return matches, nil
	}

	weight := make(map[types.Language]float64, len(matches))
	for _, sym := range matches {
		if _, seen := weight[sym.Language]; seen {
			continue
		}
		threshold, ok, err := s.store.GetThreshold(string(sym.Language))
		if err != nil {
			return nil, err
		}
		if ok {
			weight[sym.Language] = threshold
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return weight[matches[i].Language] > weight[matches[j].Language]
	})
	return matches, nil
}

// Callers returns every symbol with a `calls` edge targeting
// qualifiedName.
func (s *Surface) Callers(qualifiedName string) ([]*types.Symbol, error) {
	return s.store.GetCallers(qualifiedName)
}

// Dependencies returns the symbols symbolID depends on through one
// `calls` edge.
func (s *Surface) Dependencies(symbolID string) ([]*types.Symbol, error) {
	return s.store.GetDependencies(symbolID)
}

// CallChain returns up to depth BFS levels of callees from symbolID.
func (s *Surface) CallChain(symbolID string, depth int) ([][]*types.Symbol, error) {
	return s.store.GetCallChain(symbolID, depth)
}

// BlastRadius returns the deduplicated, sorted set of symbols that can
// reach symbolID within depth hops through `calls` edges (the reverse
// of CallChain).
func (s *Surface) BlastRadius(symbolID string, depth int) ([]*types.Symbol, error) {
	return s.store.BlastRadius(symbolID, depth)
}

// FormatTSV renders symbols as the tab-separated table from spec §6:
// a header row followed by one row per symbol, with tabs/newlines inside
// fields replaced by spaces so the format never breaks on odd content.
func FormatTSV(symbols []*types.Symbol) string {
	var b strings.Builder
	b.WriteString("symbol_id\tqualified_name\tfile_path\tlanguage\tkind\n")
	for _, sym := range symbols {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s\n",
			tsvSafe(sym.ID), tsvSafe(sym.QualifiedName), tsvSafe(sym.FilePath),
			tsvSafe(string(sym.Language)), tsvSafe(string(sym.Kind)))
	}
	return b.String()
}

func tsvSafe(field string) string {
	field = strings.ReplaceAll(field, "\t", " ")
	field = strings.ReplaceAll(field, "\n", " ")
	field = strings.ReplaceAll(field, "\r", " ")
	return field
}

// Hover resolves the narrowest symbol in filePath whose range contains
// (line, col) and renders its SIR as the Markdown body described in
// spec §4.8/§6. Returns ("", nil) when no symbol's range contains the
// position.
func (s *Surface) Hover(filePath string, line, col int) (string, error) {
	symbols, err := s.store.ListSymbolsForFile(filePath)
	if err != nil {
		return "", err
	}

	target := narrowestContaining(symbols, line, col)
	if target == nil {
		return "", nil
	}

	meta, err := s.store.GetSirMeta(target.ID)
	if err != nil {
		return "", err
	}
	if meta == nil {
		return renderHover(target, nil, nil), nil
	}

	sir, ok, err := s.blobs.ReadSIR(target.ID)
	if err != nil {
		return "", err
	}
	if !ok {
		sir = nil
	}
	return renderHover(target, meta, sir), nil
}

// narrowestContaining finds the symbol whose range contains (line, col),
// preferring the smallest line span among overlapping candidates (e.g. a
// method nested inside a class).
func narrowestContaining(symbols []*types.Symbol, line, col int) *types.Symbol {
	var best *types.Symbol
	bestSpan := -1
	for _, sym := range symbols {
		if !rangeContains(sym.Range, line, col) {
			continue
		}
		span := sym.Range.EndLine - sym.Range.StartLine
		if best == nil || span < bestSpan {
			best = sym
			bestSpan = span
		}
	}
	return best
}

func rangeContains(r types.Range, line, col int) bool {
	if line < r.StartLine || line > r.EndLine {
		return false
	}
	if line == r.StartLine && col < r.StartCol {
		return false
	}
	if line == r.EndLine && col >= r.EndCol {
		return false
	}
	return true
}

// renderHover builds the Markdown hover body from spec §4.8: intent,
// inputs/outputs, side effects, dependencies, confidence, and — when the
// SIR is stale — a prominent warning line carrying the recorded error.
func renderHover(sym *types.Symbol, meta *types.SirMeta, sir *types.SIR) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", sym.QualifiedName)

	if meta == nil || sir == nil {
		b.WriteString("_No SIR generated yet._\n")
		return b.String()
	}

	if meta.SirStatus == types.SirStale {
		fmt.Fprintf(&b, "**AETHER WARNING: SIR is stale.** %s\n\n", meta.LastError)
	}

	fmt.Fprintf(&b, "**Intent**\n\n%s\n\n", sir.Intent)
	fmt.Fprintf(&b, "**Confidence:** %.2f\n\n", sir.Confidence)
	writeListSection(&b, "Inputs", sir.Inputs)
	writeListSection(&b, "Outputs", sir.Outputs)
	writeListSection(&b, "Side Effects", sir.SideEffects)
	writeListSection(&b, "Dependencies", sir.Dependencies)
	writeListSection(&b, "Error Modes", sir.ErrorModes)
	return b.String()
}

func writeListSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, item := range sorted {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// AddNote stores content as a note, computing its content-addressed id
// and dedup key per spec §4.1 ("hash(content || ':' || timestamp)" for
// the id; whitespace-normalized case-folded content hash for dedup). When
// an embedding engine is configured it embeds content first so search
// ranking can later use it; a failed embedding call degrades to a
// plain-text note rather than failing the whole operation.
func (s *Surface) AddNote(ctx context.Context, content string, tags []string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", types.ErrEmptyContent
	}

	now := time.Now()
	note := &types.Note{
		ID:         ident.NoteID(content, now.Format(time.RFC3339Nano)),
		Content:    content,
		ContentKey: ident.NoteContentKey(content),
		Tags:       tags,
		CreatedAt:  now.Unix(),
	}

	if s.embeds != nil {
		vec, err := s.embeds.Embed(ctx, content)
		if err != nil {
			logNoteEmbeddingFailure(s.embeds.Name(), err)
		} else {
			note.Embedding = vec
			note.EmbeddingProvider = s.embeds.Name()
		}
	}

	return s.store.UpsertNote(note)
}

// GetNote returns the note with id, or (nil, nil) if absent.
func (s *Surface) GetNote(id string) (*types.Note, error) {
	return s.store.GetNote(id)
}

// SearchNotes performs a substring search over note content, unless an
// embedding engine is configured and the query embeds successfully, in
// which case results are instead ranked by cosine similarity against the
// embedded note candidates — falling back to substring search on any
// embedding failure or when no note carries an embedding.
func (s *Surface) SearchNotes(query string, limit int) ([]*types.Note, error) {
	if s.embeds == nil {
		return s.store.SearchNotes(query, limit)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	queryVec, err := s.embeds.Embed(ctx, query)
	if err != nil {
		logNoteEmbeddingFailure(s.embeds.Name(), err)
		return s.store.SearchNotes(query, limit)
	}

	candidates, err := s.store.ListEmbeddedNotes(500)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return s.store.SearchNotes(query, limit)
	}

	vectors := make([][]float32, len(candidates))
	for i, n := range candidates {
		vectors[i] = n.Embedding
	}
	ranked, err := embedding.FindTopK(queryVec, vectors, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: rank notes by embedding: %v", types.ErrStore, err)
	}

	out := make([]*types.Note, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, candidates[r.Index])
	}
	return out, nil
}

func logNoteEmbeddingFailure(provider string, err error) {
	logging.Get(logging.CategorySearch).Warn("note embedding via %s failed, storing without a vector: %v", provider, err)
}
