package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/ident"
	"aether/internal/types"
)

func openTestBlobStore(t *testing.T) *BlobStore {
	t.Helper()
	b, err := NewBlobStore(filepath.Join(t.TempDir(), "sir"))
	require.NoError(t, err)
	return b
}

func TestBlobWriteThenReadRoundTrips(t *testing.T) {
	b := openTestBlobStore(t)
	// Empty lists are written as [] and read back as empty, non-nil slices.
	sir := types.SIR{
		Intent:       "does a thing",
		Inputs:       []string{},
		Outputs:      []string{},
		SideEffects:  []string{},
		Dependencies: []string{},
		ErrorModes:   []string{},
		Confidence:   0.8,
	}

	require.NoError(t, b.WriteSIR("sym-1", sir))

	got, ok, err := b.ReadSIR("sym-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sir, *got)
}

func TestBlobReadMissingIsRecoverable(t *testing.T) {
	b := openTestBlobStore(t)

	got, ok, err := b.ReadSIR("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestBlobDeleteMissingIsNotAnError(t *testing.T) {
	b := openTestBlobStore(t)
	assert.NoError(t, b.DeleteSIR("never-written"))
}

func TestBlobDeleteRemovesFile(t *testing.T) {
	b := openTestBlobStore(t)
	require.NoError(t, b.WriteSIR("sym-1", types.SIR{Intent: "x", Confidence: 0.5}))
	assert.True(t, b.Exists("sym-1"))

	require.NoError(t, b.DeleteSIR("sym-1"))
	assert.False(t, b.Exists("sym-1"))
}

func TestBlobWriteUsesCanonicalKeyOrderMatchingSirHash(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBlobStore(filepath.Join(dir, "sir"))
	require.NoError(t, err)

	sir := types.SIR{
		Intent:       "does a thing",
		Inputs:       []string{"b", "a"},
		Outputs:      []string{"z", "y"},
		SideEffects:  []string{"writes a file"},
		Dependencies: []string{"other_fn"},
		ErrorModes:   []string{"io error"},
		Confidence:   0.8,
	}
	require.NoError(t, b.WriteSIR("sym-1", sir))

	raw, err := os.ReadFile(filepath.Join(dir, "sir", "sym-1.json"))
	require.NoError(t, err)
	assert.Equal(t, ident.CanonicalSIR(sir), string(raw))
}

func TestBlobOverwritePreservesLatestOnRewrite(t *testing.T) {
	b := openTestBlobStore(t)
	require.NoError(t, b.WriteSIR("sym-1", types.SIR{Intent: "v1", Confidence: 0.5}))
	require.NoError(t, b.WriteSIR("sym-1", types.SIR{Intent: "v2", Confidence: 0.6}))

	got, ok, err := b.ReadSIR("sym-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", got.Intent)
}
