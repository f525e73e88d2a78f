package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/capldoc-mcp/internal/vectorizer"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testArtifacts(t *testing.T) *IndexArtifacts {
	t.Helper()
	corpus := []string{
		"output sends a message to the bus",
		"setTimer starts a cyclic timer",
	}
	model, err := vectorizer.Fit(corpus, vectorizer.Config{})
	require.NoError(t, err)

	chunks := []types.Chunk{
		{
			Text:         corpus[0],
			FunctionName: "output",
			Type:         types.ChunkMain,
			Metadata:     types.ChunkMetadata{Description: "Sends a message."},
		},
		{
			Text:         corpus[1],
			FunctionName: "setTimer",
			Type:         types.ChunkMain,
			Metadata:     types.ChunkMetadata{SyntaxForms: []string{"setTimer(t, ms)"}},
		},
	}
	return &IndexArtifacts{
		RootsKey: "abc123",
		Roots:    []string{"/docs/capl"},
		Model:    model,
		Chunks:   chunks,
		Vectors:  model.Transform(corpus),
	}
}

func TestSaveAndLoadIndex(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	artifacts := testArtifacts(t)

	require.NoError(t, s.SaveIndex(ctx, artifacts))

	loaded, err := s.LoadIndex(ctx, artifacts.RootsKey)
	require.NoError(t, err)

	assert.Equal(t, artifacts.Roots, loaded.Roots)
	assert.Equal(t, artifacts.Chunks, loaded.Chunks)
	assert.False(t, loaded.BuiltAt.IsZero())
	require.Len(t, loaded.Vectors, len(artifacts.Vectors))
	for i := range artifacts.Vectors {
		assert.Equal(t, artifacts.Vectors[i], loaded.Vectors[i], "vector %d", i)
	}

	// The restored model must transform queries identically.
	q := "cyclic timer"
	assert.Equal(t, artifacts.Model.TransformOne(q), loaded.Model.TransformOne(q))
}

func TestLoadIndex_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.LoadIndex(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveIndex_ReplacesPrevious(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	artifacts := testArtifacts(t)

	require.NoError(t, s.SaveIndex(ctx, artifacts))

	// Rebuild with a single chunk under the same key.
	smaller := testArtifacts(t)
	smaller.Chunks = smaller.Chunks[:1]
	smaller.Vectors = smaller.Vectors[:1]
	require.NoError(t, s.SaveIndex(ctx, smaller))

	loaded, err := s.LoadIndex(ctx, artifacts.RootsKey)
	require.NoError(t, err)
	assert.Len(t, loaded.Chunks, 1)
	assert.Equal(t, "output", loaded.Chunks[0].FunctionName)
}

func TestSaveIndex_CountMismatch(t *testing.T) {
	s := newTestStorage(t)
	artifacts := testArtifacts(t)
	artifacts.Vectors = artifacts.Vectors[:1]

	err := s.SaveIndex(context.Background(), artifacts)
	assert.Error(t, err)
}

func TestHasIndex(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	ok, err := s.HasIndex(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveIndex(ctx, testArtifacts(t)))

	ok, err = s.HasIndex(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteIndex(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveIndex(ctx, testArtifacts(t)))
	require.NoError(t, s.DeleteIndex(ctx, "abc123"))

	ok, err := s.HasIndex(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	// Cascade removed the chunks too.
	_, err = s.LoadIndex(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeparateRootSetsCoexist(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	a := testArtifacts(t)
	b := testArtifacts(t)
	b.RootsKey = "def456"
	b.Roots = []string{"/docs/other"}

	require.NoError(t, s.SaveIndex(ctx, a))
	require.NoError(t, s.SaveIndex(ctx, b))

	la, err := s.LoadIndex(ctx, a.RootsKey)
	require.NoError(t, err)
	lb, err := s.LoadIndex(ctx, b.RootsKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/capl"}, la.Roots)
	assert.Equal(t, []string{"/docs/other"}, lb.Roots)
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3.14159}
	assert.Equal(t, vec, deserializeVector(serializeVector(vec)))
	assert.Empty(t, deserializeVector(nil))
}
