package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/capldoc-mcp/internal/chunker"
	"github.com/dshills/capldoc-mcp/internal/scanner"
	"github.com/dshills/capldoc-mcp/internal/storage"
	"github.com/dshills/capldoc-mcp/internal/vectorizer"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

// Snapshot is an immutable view of a built index. Readers hold a snapshot
// for the duration of a search; a concurrent rebuild publishes a new
// snapshot without touching existing ones.
type Snapshot struct {
	Model      *vectorizer.Model
	Matrix     [][]float32
	Chunks     []types.Chunk
	Roots      []string
	RootsKey   string
	Functions  int
	Generation uint64
	BuiltAt    time.Time
}

// Empty reports whether the snapshot was built over a corpus with no
// extractable records. An empty index is ready; every search just
// returns no results.
func (s *Snapshot) Empty() bool {
	return len(s.Chunks) == 0
}

// BuildStats describes what a Build call did.
type BuildStats struct {
	Functions int               `json:"functions"`
	Chunks    int               `json:"chunks"`
	Failures  []scanner.Failure `json:"failures,omitempty"`
	FromCache bool              `json:"from_cache"`
	Duration  time.Duration     `json:"-"`
}

// Store owns the current index snapshot and the build pipeline that
// produces it. Concurrent Build calls for the same root set are coalesced
// into one pipeline run.
type Store struct {
	storage *storage.SQLiteStorage
	scanner *scanner.Scanner
	chunker *chunker.Builder
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot

	group      singleflight.Group
	generation atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger used during builds.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store backed by the given cache storage.
func New(st *storage.SQLiteStorage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		chunker: chunker.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scanner = scanner.New(scanner.WithLogger(s.logger))
	return s
}

// RootsKey derives a stable identity for a root set: paths are cleaned,
// deduplicated, and sorted before hashing, so ordering and trailing slashes
// do not create distinct cache entries.
func RootsKey(roots []string) (string, []string) {
	seen := make(map[string]struct{}, len(roots))
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		c := filepath.Clean(r)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	sort.Strings(cleaned)

	sum := sha256.Sum256([]byte(strings.Join(cleaned, "\x00")))
	return hex.EncodeToString(sum[:]), cleaned
}

// Snapshot returns the current index, or types.ErrIndexNotReady when no
// build has completed yet.
func (s *Store) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, types.ErrIndexNotReady
	}
	return s.snapshot, nil
}

// Build ensures an index exists for the given roots and returns it.
// Resolution order: the in-memory snapshot if it covers the same root set,
// then the on-disk cache, then a full pipeline run. force skips both reuse
// paths and rebuilds from the documents.
func (s *Store) Build(ctx context.Context, roots []string, force bool) (*Snapshot, *BuildStats, error) {
	if len(roots) == 0 {
		return nil, nil, fmt.Errorf("no documentation roots given")
	}
	key, cleaned := RootsKey(roots)

	if !force {
		s.mu.RLock()
		current := s.snapshot
		s.mu.RUnlock()
		if current != nil && current.RootsKey == key {
			return current, &BuildStats{
				Functions: current.Functions,
				Chunks:    len(current.Chunks),
				FromCache: true,
			}, nil
		}
	}

	type buildResult struct {
		snap  *Snapshot
		stats *BuildStats
	}
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		snap, stats, err := s.build(ctx, key, cleaned, force)
		if err != nil {
			return nil, err
		}
		return buildResult{snap, stats}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	res := v.(buildResult)

	s.mu.Lock()
	s.snapshot = res.snap
	s.mu.Unlock()

	return res.snap, res.stats, nil
}

func (s *Store) build(ctx context.Context, key string, roots []string, force bool) (*Snapshot, *BuildStats, error) {
	start := time.Now()

	if !force {
		artifacts, err := s.storage.LoadIndex(ctx, key)
		if err == nil {
			s.logger.Info("index loaded from cache",
				"roots", roots, "chunks", len(artifacts.Chunks))
			snap := s.snapshotFromArtifacts(artifacts)
			return snap, &BuildStats{
				Functions: snap.Functions,
				Chunks:    len(snap.Chunks),
				FromCache: true,
				Duration:  time.Since(start),
			}, nil
		}
		if err != storage.ErrNotFound {
			s.logger.Warn("cache read failed, rebuilding", "error", err)
		}
	}

	docs, failures := s.scanner.Scan(roots)
	chunks := s.chunker.Build(docs)

	var (
		model  *vectorizer.Model
		matrix [][]float32
	)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Text
		}
		var err error
		model, err = vectorizer.Fit(texts, vectorizer.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fit vectorizer: %w", err)
		}
		matrix = model.Transform(texts)
	}

	builtAt := time.Now()
	if err := s.storage.SaveIndex(ctx, &storage.IndexArtifacts{
		RootsKey: key,
		Roots:    roots,
		Model:    model,
		Chunks:   chunks,
		Vectors:  matrix,
		BuiltAt:  builtAt,
	}); err != nil {
		// A failed cache write degrades the next startup, not this one.
		s.logger.Warn("cache write failed", "error", err)
	}

	snap := &Snapshot{
		Model:      model,
		Matrix:     matrix,
		Chunks:     chunks,
		Roots:      roots,
		RootsKey:   key,
		Functions:  len(docs),
		Generation: s.generation.Add(1),
		BuiltAt:    builtAt,
	}
	s.logger.Info("index built",
		"roots", roots, "functions", len(docs), "chunks", len(chunks),
		"failures", len(failures), "duration", time.Since(start))

	return snap, &BuildStats{
		Functions: len(docs),
		Chunks:    len(chunks),
		Failures:  failures,
		Duration:  time.Since(start),
	}, nil
}

// snapshotFromArtifacts rehydrates a cached index. The function count is
// recovered from the distinct function names in the chunks.
func (s *Store) snapshotFromArtifacts(a *storage.IndexArtifacts) *Snapshot {
	names := make(map[string]struct{})
	for i := range a.Chunks {
		names[a.Chunks[i].FunctionName] = struct{}{}
	}
	return &Snapshot{
		Model:      a.Model,
		Matrix:     a.Vectors,
		Chunks:     a.Chunks,
		Roots:      a.Roots,
		RootsKey:   a.RootsKey,
		Functions:  len(names),
		Generation: s.generation.Add(1),
		BuiltAt:    a.BuiltAt,
	}
}
