package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/capldoc-mcp/internal/storage"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func docFor(name, description string) string {
	return "# " + name + "\n## Function Syntax\n```\nvoid " + name + "()\n```\n## Description\n" + description + "\n"
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	cacheDir := t.TempDir()
	st, err := storage.NewSQLiteStorage(filepath.Join(cacheDir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st), cacheDir
}

func newDocsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "output.md", docFor("output", "Sends a message onto the bus."))
	writeDoc(t, dir, "settimer.md", docFor("setTimer", "Starts a cyclic timer."))
	return dir
}

func TestSnapshot_NotReady(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, types.ErrIndexNotReady)
}

func TestBuild_FromDocuments(t *testing.T) {
	s, _ := newTestStore(t)
	docsDir := newDocsDir(t)

	snap, stats, err := s.Build(context.Background(), []string{docsDir}, false)
	require.NoError(t, err)

	assert.False(t, stats.FromCache)
	assert.Equal(t, 2, stats.Functions)
	assert.Equal(t, 2, stats.Chunks)
	assert.Empty(t, stats.Failures)

	require.NotNil(t, snap.Model)
	assert.Len(t, snap.Matrix, 2)
	assert.False(t, snap.Empty())

	// Build publishes the snapshot.
	current, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap.Generation, current.Generation)
}

func TestBuild_ReusesInMemorySnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	docsDir := newDocsDir(t)
	ctx := context.Background()

	first, _, err := s.Build(ctx, []string{docsDir}, false)
	require.NoError(t, err)

	second, stats, err := s.Build(ctx, []string{docsDir}, false)
	require.NoError(t, err)
	assert.True(t, stats.FromCache)
	assert.Equal(t, first.Generation, second.Generation)
}

func TestBuild_CacheSurvivesRestart(t *testing.T) {
	docsDir := newDocsDir(t)
	cacheDir := t.TempDir()
	ctx := context.Background()
	query := "cyclic timer"

	st1, err := storage.NewSQLiteStorage(filepath.Join(cacheDir, "cache.db"))
	require.NoError(t, err)
	s1 := New(st1)
	built, _, err := s1.Build(ctx, []string{docsDir}, false)
	require.NoError(t, err)
	wantVec := built.Model.TransformOne(query)
	require.NoError(t, st1.Close())

	// Second process with the same cache file and roots.
	st2, err := storage.NewSQLiteStorage(filepath.Join(cacheDir, "cache.db"))
	require.NoError(t, err)
	defer func() { _ = st2.Close() }()
	s2 := New(st2)

	loaded, stats, err := s2.Build(ctx, []string{docsDir}, false)
	require.NoError(t, err)
	assert.True(t, stats.FromCache)
	assert.Equal(t, len(built.Chunks), len(loaded.Chunks))
	assert.Equal(t, built.Functions, loaded.Functions)
	assert.Equal(t, wantVec, loaded.Model.TransformOne(query))
}

func TestBuild_ForceRebuilds(t *testing.T) {
	s, _ := newTestStore(t)
	docsDir := newDocsDir(t)
	ctx := context.Background()

	first, _, err := s.Build(ctx, []string{docsDir}, false)
	require.NoError(t, err)

	// A new document appears; force picks it up.
	writeDoc(t, docsDir, "canceltimer.md", docFor("cancelTimer", "Stops a running timer."))

	second, stats, err := s.Build(ctx, []string{docsDir}, true)
	require.NoError(t, err)
	assert.False(t, stats.FromCache)
	assert.Equal(t, 3, stats.Functions)
	assert.Greater(t, second.Generation, first.Generation)
}

func TestBuild_RootSetChangeRebuilds(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	dirA := newDocsDir(t)
	dirB := t.TempDir()
	writeDoc(t, dirB, "other.md", docFor("other", "Something else entirely."))

	_, _, err := s.Build(ctx, []string{dirA}, false)
	require.NoError(t, err)

	snap, stats, err := s.Build(ctx, []string{dirB}, false)
	require.NoError(t, err)
	assert.False(t, stats.FromCache)
	assert.Equal(t, 1, snap.Functions)
}

func TestBuild_EmptyCorpusIsReady(t *testing.T) {
	s, _ := newTestStore(t)
	emptyDir := t.TempDir()

	snap, stats, err := s.Build(context.Background(), []string{emptyDir}, false)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Zero(t, stats.Functions)

	// The store is ready; searches will just find nothing.
	_, err = s.Snapshot()
	assert.NoError(t, err)
}

func TestBuild_NoRoots(t *testing.T) {
	s, _ := newTestStore(t)
	_, _, err := s.Build(context.Background(), nil, false)
	assert.Error(t, err)
}

func TestRootsKey_Normalization(t *testing.T) {
	k1, cleaned := RootsKey([]string{"/docs/b/", "/docs/a", "/docs/a"})
	k2, _ := RootsKey([]string{"/docs/a", "/docs/b"})

	assert.Equal(t, k2, k1)
	assert.Equal(t, []string{"/docs/a", "/docs/b"}, cleaned)

	k3, _ := RootsKey([]string{"/docs/a"})
	assert.NotEqual(t, k1, k3)
}
