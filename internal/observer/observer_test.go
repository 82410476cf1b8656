package observer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/parsefacade"
)

func newTestObserver(t *testing.T) (*Observer, string) {
	t.Helper()
	root := t.TempDir()
	facade := parsefacade.New()
	t.Cleanup(facade.Close)
	return New(root, facade), root
}

func TestProcessPathInitialIndexTwoFunctions(t *testing.T) {
	o, root := newTestObserver(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"),
		[]byte("fn alpha() -> i32 { 1 }\nfn beta() -> i32 { 2 }\n"), 0644))

	event, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Len(t, event.Added, 2)
	assert.Empty(t, event.Updated)
	assert.Empty(t, event.Removed)
}

func TestProcessPathRename(t *testing.T) {
	o, root := newTestObserver(t)
	path := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn alpha() -> i32 { 1 }\nfn beta() -> i32 { 2 }\n"), 0644))
	_, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("fn gamma() -> i32 { 1 }\nfn beta() -> i32 { 2 }\n"), 0644))
	event, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)
	require.NotNil(t, event)

	require.Len(t, event.Added, 1)
	assert.Equal(t, "gamma", event.Added[0].QualifiedName)
	require.Len(t, event.Removed, 1)
	assert.Equal(t, "alpha", event.Removed[0].QualifiedName)
	assert.Empty(t, event.Updated)
}

func TestProcessPathSignatureChangeIsUpdate(t *testing.T) {
	o, root := newTestObserver(t)
	path := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn alpha() -> i32 { 1 }\n"), 0644))
	_, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("fn alpha() -> i32 { 2 }\n"), 0644))
	event, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Len(t, event.Updated, 1)
	assert.Equal(t, "alpha", event.Updated[0].QualifiedName)
	assert.Empty(t, event.Added)
	assert.Empty(t, event.Removed)
}

func TestProcessPathFileRemovalEmitsAllRemoved(t *testing.T) {
	o, root := newTestObserver(t)
	path := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn alpha() -> i32 { 1 }\n"), 0644))
	_, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	event, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Len(t, event.Removed, 1)
	assert.Empty(t, event.Added)
	assert.Empty(t, event.Updated)

	_, exists := o.history["lib.rs"]
	assert.False(t, exists)
}

func TestProcessPathNoChangeReturnsNil(t *testing.T) {
	o, root := newTestObserver(t)
	path := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn alpha() -> i32 { 1 }\n"), 0644))
	_, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)

	event, err := o.ProcessPath(context.Background(), "lib.rs")
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestProcessPathIgnoresGitDirectory(t *testing.T) {
	o, _ := newTestObserver(t)
	event, err := o.ProcessPath(context.Background(), ".git/HEAD")
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestSeedFromDiskOrdersByFilePath(t *testing.T) {
	o, root := newTestObserver(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "zeta.rs"), []byte("fn z() -> i32 { 0 }\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha.rs"), []byte("fn a() -> i32 { 0 }\n"), 0644))

	events, err := o.SeedFromDisk(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "alpha.rs", events[0].FilePath)
	assert.Equal(t, "zeta.rs", events[1].FilePath)
}
