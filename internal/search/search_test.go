package search

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/store"
	"aether/internal/types"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f *fakeEmbedder) Name() string    { return "fake" }

// mappedEmbedder returns a distinct vector per input text, so tests can
// exercise similarity ranking instead of every note embedding identically.
type mappedEmbedder struct {
	byText map[string][]float32
}

func (m *mappedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := m.byText[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}
func (m *mappedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (m *mappedEmbedder) Dimensions() int { return 2 }
func (m *mappedEmbedder) Name() string    { return "mapped" }

func setup(t *testing.T) (*Surface, *store.Store, *store.BlobStore) {
	t.Helper()
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "meta.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	blobs, err := store.NewBlobStore(filepath.Join(root, "sir"))
	require.NoError(t, err)

	return New(st, blobs, nil), st, blobs
}

func rangedSymbol(id, qualifiedName, filePath string, r types.Range) *types.Symbol {
	return &types.Symbol{
		ID: id, Language: types.LangRust, FilePath: filePath, Kind: types.KindFunction,
		Name: qualifiedName, QualifiedName: qualifiedName,
		SignatureFingerprint: "fp-" + id, ContentHash: "ch-" + id, Range: r,
	}
}

func TestFormatTSVEscapesTabsAndNewlines(t *testing.T) {
	symbols := []*types.Symbol{
		rangedSymbol("id\t1", "alpha\nbeta", "src/lib.rs", types.Range{StartLine: 1, EndLine: 2}),
	}
	out := FormatTSV(symbols)
	assert.Contains(t, out, "symbol_id\tqualified_name\tfile_path\tlanguage\tkind\n")
	assert.Contains(t, out, "id 1\talpha beta\tsrc/lib.rs\trust\tfunction\n")
}

func TestSearchSymbolsBiasesByCalibratedLanguageThreshold(t *testing.T) {
	s, st, _ := setup(t)

	rust := &types.Symbol{
		ID: "rust-alpha", Language: types.LangRust, FilePath: "src/lib.rs",
		Kind: types.KindFunction, Name: "alpha", QualifiedName: "alpha",
		SignatureFingerprint: "fp-r", ContentHash: "ch-r",
	}
	python := &types.Symbol{
		ID: "py-alpha", Language: types.LangPython, FilePath: "src/lib.py",
		Kind: types.KindFunction, Name: "alpha", QualifiedName: "alpha",
		SignatureFingerprint: "fp-p", ContentHash: "ch-p",
	}
	require.NoError(t, st.UpsertSymbol(rust))
	require.NoError(t, st.UpsertSymbol(python))
	require.NoError(t, st.SetThreshold(string(types.LangPython), 0.9))
	require.NoError(t, st.SetThreshold(string(types.LangRust), 0.3))

	results, err := s.SearchSymbols("alpha", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.LangPython, results[0].Language)
	assert.Equal(t, types.LangRust, results[1].Language)
}

func TestHoverFindsNarrowestSymbol(t *testing.T) {
	s, st, _ := setup(t)

	outer := rangedSymbol("outer", "Widget", "src/lib.rs", types.Range{StartLine: 1, StartCol: 0, EndLine: 10, EndCol: 1})
	inner := rangedSymbol("inner", "Widget::render", "src/lib.rs", types.Range{StartLine: 3, StartCol: 0, EndLine: 5, EndCol: 1})
	require.NoError(t, st.UpsertSymbol(outer))
	require.NoError(t, st.UpsertSymbol(inner))

	body, err := s.Hover("src/lib.rs", 4, 0)
	require.NoError(t, err)
	assert.Contains(t, body, "Widget::render")
}

func TestHoverNoMatchReturnsEmpty(t *testing.T) {
	s, st, _ := setup(t)
	sym := rangedSymbol("a", "alpha", "src/lib.rs", types.Range{StartLine: 1, StartCol: 0, EndLine: 2, EndCol: 1})
	require.NoError(t, st.UpsertSymbol(sym))

	body, err := s.Hover("src/lib.rs", 99, 0)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestHoverShowsStaleWarning(t *testing.T) {
	s, st, blobs := setup(t)
	sym := rangedSymbol("a", "alpha", "src/lib.rs", types.Range{StartLine: 1, StartCol: 0, EndLine: 2, EndCol: 1})
	require.NoError(t, st.UpsertSymbol(sym))
	require.NoError(t, blobs.WriteSIR("a", types.SIR{Intent: "does a thing", Confidence: 0.7}))
	require.NoError(t, st.UpsertSirMeta(&types.SirMeta{
		SymbolID: "a", SirStatus: types.SirStale, LastError: "network timeout",
		SirHash: "h", SirVersion: 1, Provider: "mock", UpdatedAt: 1, LastAttemptAt: 2,
	}))

	body, err := s.Hover("src/lib.rs", 1, 0)
	require.NoError(t, err)
	assert.Contains(t, body, "AETHER WARNING: SIR is stale.")
	assert.Contains(t, body, "network timeout")
}

func TestHoverFreshHasNoWarning(t *testing.T) {
	s, st, blobs := setup(t)
	sym := rangedSymbol("a", "alpha", "src/lib.rs", types.Range{StartLine: 1, StartCol: 0, EndLine: 2, EndCol: 1})
	require.NoError(t, st.UpsertSymbol(sym))
	require.NoError(t, blobs.WriteSIR("a", types.SIR{Intent: "does a thing", Confidence: 0.7}))
	require.NoError(t, st.UpsertSirMeta(&types.SirMeta{
		SymbolID: "a", SirStatus: types.SirFresh,
		SirHash: "h", SirVersion: 1, Provider: "mock", UpdatedAt: 1, LastAttemptAt: 2,
	}))

	body, err := s.Hover("src/lib.rs", 1, 0)
	require.NoError(t, err)
	assert.NotContains(t, body, "AETHER WARNING")
	assert.Contains(t, body, "**Confidence:** 0.70")
}

func TestAddNoteEmbedsAndDedupsByContentKey(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "meta.sqlite"))
	require.NoError(t, err)
	defer st.Close()
	blobs, err := store.NewBlobStore(filepath.Join(root, "sir"))
	require.NoError(t, err)

	s := New(st, blobs, &fakeEmbedder{vec: []float32{0.1, 0.2}})

	id1, err := s.AddNote(context.Background(), "remember to refactor the watcher", nil)
	require.NoError(t, err)

	note, err := s.GetNote(id1)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, []float32{0.1, 0.2}, note.Embedding)
	assert.Equal(t, "fake", note.EmbeddingProvider)

	id2, err := s.AddNote(context.Background(), "  remember   to refactor the watcher  ", nil)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestAddNoteDegradesWithoutEmbeddingOnFailure(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "meta.sqlite"))
	require.NoError(t, err)
	defer st.Close()
	blobs, err := store.NewBlobStore(filepath.Join(root, "sir"))
	require.NoError(t, err)

	s := New(st, blobs, &fakeEmbedder{err: errors.New("unreachable")})

	id, err := s.AddNote(context.Background(), "a note with no working embedder", nil)
	require.NoError(t, err)

	note, err := s.GetNote(id)
	require.NoError(t, err)
	assert.Nil(t, note.Embedding)
}

func TestAddNoteRejectsEmptyContent(t *testing.T) {
	s, _, _ := setup(t)
	_, err := s.AddNote(context.Background(), "   ", nil)
	assert.Error(t, err)
}

func TestSearchNotesRanksByEmbeddingSimilarityWhenConfigured(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "meta.sqlite"))
	require.NoError(t, err)
	defer st.Close()
	blobs, err := store.NewBlobStore(filepath.Join(root, "sir"))
	require.NoError(t, err)

	embedder := &mappedEmbedder{byText: map[string][]float32{
		"refactor the watcher loop":   {1, 0},
		"buy groceries for the week":  {0, 1},
		"how should I refactor this?": {1, 0},
	}}
	s := New(st, blobs, embedder)

	idClose, err := s.AddNote(context.Background(), "refactor the watcher loop", nil)
	require.NoError(t, err)
	idFar, err := s.AddNote(context.Background(), "buy groceries for the week", nil)
	require.NoError(t, err)

	results, err := s.SearchNotes("how should I refactor this?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, idClose, results[0].ID)
	if len(results) > 1 {
		assert.Equal(t, idFar, results[1].ID)
	}
}

func TestSearchNotesFallsBackToSubstringWhenEmbedderFails(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "meta.sqlite"))
	require.NoError(t, err)
	defer st.Close()
	blobs, err := store.NewBlobStore(filepath.Join(root, "sir"))
	require.NoError(t, err)

	s := New(st, blobs, &fakeEmbedder{err: errors.New("unreachable")})
	_, err = s.AddNote(context.Background(), "a note about the watcher", nil)
	require.NoError(t, err)

	results, err := s.SearchNotes("watcher", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
