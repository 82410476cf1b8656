package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "meta.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSymbol(id, qualifiedName string) *types.Symbol {
	return &types.Symbol{
		ID:                   id,
		Language:             types.LangRust,
		FilePath:             "src/lib.rs",
		Kind:                 types.KindFunction,
		Name:                 qualifiedName,
		QualifiedName:        qualifiedName,
		SignatureFingerprint: "fp-" + id,
		ContentHash:          "ch-" + id,
		Range:                types.Range{StartLine: 1, StartCol: 0, EndLine: 3, EndCol: 1},
	}
}

func TestUpsertSymbolIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	sym := sampleSymbol("sym-1", "alpha")

	require.NoError(t, s.UpsertSymbol(sym))
	require.NoError(t, s.UpsertSymbol(sym))

	got, err := s.GetSymbolRecord("sym-1")
	require.NoError(t, err)
	assert.Equal(t, sym, got)
}

func TestMarkRemovedDeletesSymbolEdgesAndMeta(t *testing.T) {
	s := openTestStore(t)
	sym := sampleSymbol("sym-1", "alpha")
	require.NoError(t, s.UpsertSymbol(sym))
	require.NoError(t, s.UpsertEdges("src/lib.rs", []*types.SymbolEdge{
		{SourceID: "sym-1", TargetQualifiedName: "beta", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
	}))
	require.NoError(t, s.UpsertSirMeta(&types.SirMeta{
		SymbolID: "sym-1", SirHash: "h", SirVersion: 1, Provider: "mock", Model: "mock",
		UpdatedAt: 1, SirStatus: types.SirFresh, LastAttemptAt: 1,
	}))

	require.NoError(t, s.MarkRemoved("sym-1"))

	sym2, err := s.GetSymbolRecord("sym-1")
	require.NoError(t, err)
	assert.Nil(t, sym2)

	meta, err := s.GetSirMeta("sym-1")
	require.NoError(t, err)
	assert.Nil(t, meta)

	edges, err := s.EdgesFromSource("sym-1")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestListSymbolsForFileOrdersByQualifiedName(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertSymbol(sampleSymbol("sym-b", "beta")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("sym-a", "alpha")))

	syms, err := s.ListSymbolsForFile("src/lib.rs")
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "alpha", syms[0].QualifiedName)
	assert.Equal(t, "beta", syms[1].QualifiedName)
}

func TestSearchSymbolsEmptyQueryReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertSymbol(sampleSymbol("sym-a", "alpha")))

	results, err := s.SearchSymbols("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSymbolsMatchesSubstringCaseInsensitively(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertSymbol(sampleSymbol("sym-a", "AlphaHandler")))

	results, err := s.SearchSymbols("alpha", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AlphaHandler", results[0].QualifiedName)
}

func TestSearchSymbolsClampsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.UpsertSymbol(sampleSymbol(string(rune('a'+i))+"-id", "match-"+string(rune('a'+i)))))
	}

	results, err := s.SearchSymbols("match", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1) // clamped up to 1

	results, err = s.SearchSymbols("match", 1000)
	require.NoError(t, err)
	assert.Len(t, results, 5) // only 5 rows exist, below the 100 clamp
}

func TestNoteUpsertDedupesByContentKey(t *testing.T) {
	s := openTestStore(t)
	note := &types.Note{ID: "note-1", Content: "remember this", ContentKey: "key-1", CreatedAt: 100}

	id1, err := s.UpsertNote(note)
	require.NoError(t, err)
	assert.Equal(t, "note-1", id1)

	dup := &types.Note{ID: "note-2", Content: "remember this", ContentKey: "key-1", CreatedAt: 200}
	id2, err := s.UpsertNote(dup)
	require.NoError(t, err)
	assert.Equal(t, "note-1", id2, "dedup must keep the original row, not overwrite it")

	got, err := s.GetNote("note-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.CreatedAt)
}

func TestNoteEmbeddingRoundTrips(t *testing.T) {
	s := openTestStore(t)
	note := &types.Note{
		ID: "note-1", Content: "x", ContentKey: "key-1", CreatedAt: 1,
		EmbeddingProvider: "mock", EmbeddingModel: "mock-small",
		Embedding: []float32{0.1, 0.2, 0.3},
	}
	_, err := s.UpsertNote(note)
	require.NoError(t, err)

	got, err := s.GetNote("note-1")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, got.Embedding, 1e-6)
}

func TestCalibrationGetSetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetThreshold("rust")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetThreshold("rust", 0.72))
	threshold, ok, err := s.GetThreshold("rust")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.72, threshold)
}

func TestCallChainMinHopPerLevel(t *testing.T) {
	s := openTestStore(t)
	// alpha -> beta -> gamma -> delta, and alpha -> gamma directly (shortcut).
	require.NoError(t, s.UpsertSymbol(sampleSymbol("alpha", "alpha")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("beta", "beta")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("gamma", "gamma")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("delta", "delta")))

	require.NoError(t, s.UpsertEdges("src/lib.rs", []*types.SymbolEdge{
		{SourceID: "alpha", TargetQualifiedName: "beta", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
		{SourceID: "alpha", TargetQualifiedName: "gamma", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
		{SourceID: "beta", TargetQualifiedName: "gamma", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
		{SourceID: "gamma", TargetQualifiedName: "delta", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
	}))

	levels, err := s.GetCallChain("alpha", 3)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Len(t, levels[0], 2) // beta, gamma (gamma claimed at level 1 via the shortcut)
	assert.Len(t, levels[1], 1) // delta, two hops away through the shortcut
	assert.Equal(t, "delta", levels[1][0].QualifiedName)
	assert.Empty(t, levels[2]) // nothing new reachable at level 3
}

func TestGetCallersFindsDirectCallers(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertSymbol(sampleSymbol("alpha", "alpha")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("beta", "beta")))
	require.NoError(t, s.UpsertEdges("src/lib.rs", []*types.SymbolEdge{
		{SourceID: "alpha", TargetQualifiedName: "beta", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
	}))

	callers, err := s.GetCallers("beta")
	require.NoError(t, err)
	require.Len(t, callers, 1)
	assert.Equal(t, "alpha", callers[0].QualifiedName)
}

func TestGetDependenciesOmitsUnresolvedExternalTargets(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertSymbol(sampleSymbol("alpha", "alpha")))
	require.NoError(t, s.UpsertEdges("src/lib.rs", []*types.SymbolEdge{
		{SourceID: "alpha", TargetQualifiedName: "external::thing", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
	}))

	deps, err := s.GetDependencies("alpha")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestBlastRadiusFlattensCallerLevels(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertSymbol(sampleSymbol("alpha", "alpha")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("beta", "beta")))
	require.NoError(t, s.UpsertSymbol(sampleSymbol("gamma", "gamma")))
	require.NoError(t, s.UpsertEdges("src/lib.rs", []*types.SymbolEdge{
		{SourceID: "alpha", TargetQualifiedName: "beta", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
		{SourceID: "beta", TargetQualifiedName: "gamma", EdgeKind: types.EdgeCalls, FilePath: "src/lib.rs"},
	}))

	affected, err := s.BlastRadius("gamma", 2)
	require.NoError(t, err)
	names := []string{affected[0].QualifiedName}
	if len(affected) > 1 {
		names = append(names, affected[1].QualifiedName)
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}
