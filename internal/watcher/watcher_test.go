package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/debounce"
)

func TestIsIgnoredMatchesAnyComponent(t *testing.T) {
	assert.True(t, IsIgnored(".git/HEAD"))
	assert.True(t, IsIgnored("src/.aether/meta.sqlite"))
	assert.True(t, IsIgnored("project/target/debug/out"))
	assert.False(t, IsIgnored("src/lib.rs"))
}

func TestPollOnceMarksNewAndChangedFiles(t *testing.T) {
	root := t.TempDir()
	q := debounce.New()
	w := New(root, q, time.Hour) // interval irrelevant; we call pollOnce directly

	filePath := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(filePath, []byte("fn a() {}"), 0644))

	w.pollOnce() // baseline: first sight of the file marks it due
	assert.Equal(t, 1, q.Len())

	due := q.DrainDue(time.Now().Add(time.Hour), 0)
	assert.Equal(t, []string{"lib.rs"}, due)

	// No change: second poll marks nothing new.
	w.pollOnce()
	assert.Equal(t, 0, q.Len())

	// Touch the file with a new mtime.
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(filePath, future, future))
	w.pollOnce()
	assert.Equal(t, 1, q.Len())
}

func TestPollOnceMarksDeletedFiles(t *testing.T) {
	root := t.TempDir()
	q := debounce.New()
	w := New(root, q, time.Hour)

	filePath := filepath.Join(root, "lib.rs")
	require.NoError(t, os.WriteFile(filePath, []byte("fn a() {}"), 0644))
	w.pollOnce()
	q.DrainDue(time.Now().Add(time.Hour), 0)

	require.NoError(t, os.Remove(filePath))
	w.pollOnce()

	due := q.DrainDue(time.Now().Add(time.Hour), 0)
	assert.Equal(t, []string{"lib.rs"}, due)
}

func TestPollOnceSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	q := debounce.New()
	w := New(root, q, time.Hour)

	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte("fn a() {}"), 0644))

	w.pollOnce()
	due := q.DrainDue(time.Now().Add(time.Hour), 0)
	assert.Equal(t, []string{"lib.rs"}, due)
}

func TestStartStopLifecycle(t *testing.T) {
	root := t.TempDir()
	q := debounce.New()
	w := New(root, q, 10*time.Millisecond)

	w.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	w.Stop()
}
