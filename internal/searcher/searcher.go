package searcher

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/dshills/capldoc-mcp/internal/index"
	"github.com/dshills/capldoc-mcp/internal/vectorizer"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

// Default search parameters.
const (
	DefaultTopK = 5
	// functionMinScore filters noise matches during function aggregation.
	functionMinScore = 0.05
	// functionOversample widens the chunk search so enough distinct
	// functions survive the per-function collapse.
	functionOversample = 3
)

// Options narrows a chunk search.
type Options struct {
	// TopK caps the number of results. Zero means DefaultTopK.
	TopK int
	// MinScore drops results scoring at or below the threshold.
	MinScore float64
	// ChunkType restricts results to one chunk type when non-empty.
	ChunkType types.ChunkType
}

// FunctionContext is the merged documentation for one function, assembled
// from every chunk that mentions it.
type FunctionContext struct {
	Name         string            `json:"function_name"`
	SyntaxForms  []string          `json:"syntax_forms,omitempty"`
	Description  string            `json:"description,omitempty"`
	ValidFor     string            `json:"valid_for,omitempty"`
	Parameters   []types.Parameter `json:"parameters,omitempty"`
	ReturnValues []string          `json:"return_values,omitempty"`
	Example      string            `json:"example,omitempty"`
}

// Engine ranks index chunks against free-text queries.
type Engine struct {
	store  *index.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates a search engine over the given index store.
func New(store *index.Store, opts ...Option) *Engine {
	e := &Engine{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the chunks most similar to the query, best first.
// Returns types.ErrIndexNotReady before the first successful build.
func (e *Engine) Search(query string, opts Options) ([]types.ScoredChunk, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return e.searchSnapshot(snap, query, opts), nil
}

func (e *Engine) searchSnapshot(snap *index.Snapshot, query string, opts Options) []types.ScoredChunk {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if snap.Empty() {
		return []types.ScoredChunk{}
	}

	queryVec := snap.Model.TransformOne(query)

	scored := make([]types.ScoredChunk, 0, opts.TopK)
	for i := range snap.Chunks {
		if opts.ChunkType != "" && snap.Chunks[i].Type != opts.ChunkType {
			continue
		}
		score := vectorizer.CosineSimilarity(queryVec, snap.Matrix[i])
		if score <= opts.MinScore {
			continue
		}
		scored = append(scored, types.ScoredChunk{Chunk: snap.Chunks[i], Score: score})
	}

	// Stable sort keeps index order for tied scores, which makes results
	// deterministic across identical builds.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}

	e.logger.Debug("chunk search", "query", query, "results", len(scored))
	return scored
}

// SearchFunctions aggregates chunk scores per function and returns the
// best-scoring functions, best first. A function's score is the maximum
// over its chunks.
func (e *Engine) SearchFunctions(query string, topK int) ([]types.FunctionScore, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	chunks := e.searchSnapshot(snap, query, Options{
		TopK:     topK * functionOversample,
		MinScore: functionMinScore,
	})

	best := make(map[string]float64)
	order := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		name := sc.Chunk.FunctionName
		if prev, ok := best[name]; !ok {
			best[name] = sc.Score
			order = append(order, name)
		} else if sc.Score > prev {
			best[name] = sc.Score
		}
	}

	results := make([]types.FunctionScore, 0, len(order))
	for _, name := range order {
		results = append(results, types.FunctionScore{Name: name, Score: best[name]})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// FunctionContext merges all indexed chunks for the named function
// (case-insensitive) into one record. Returns types.ErrFunctionNotFound
// when the function has neither a description nor any syntax form in the
// index.
func (e *Engine) FunctionContext(name string) (*FunctionContext, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}

	fc := &FunctionContext{}
	for i := range snap.Chunks {
		chunk := &snap.Chunks[i]
		if !strings.EqualFold(chunk.FunctionName, name) {
			continue
		}
		if fc.Name == "" {
			fc.Name = chunk.FunctionName
		}
		merge(fc, chunk)
	}

	if fc.Description == "" && len(fc.SyntaxForms) == 0 {
		return nil, types.ErrFunctionNotFound
	}
	return fc, nil
}

func merge(fc *FunctionContext, chunk *types.Chunk) {
	meta := &chunk.Metadata
	if len(meta.SyntaxForms) > 0 && len(fc.SyntaxForms) == 0 {
		fc.SyntaxForms = meta.SyntaxForms
	}
	if meta.Description != "" && fc.Description == "" {
		fc.Description = meta.Description
	}
	if meta.ValidFor != "" && fc.ValidFor == "" {
		fc.ValidFor = meta.ValidFor
	}
	if len(meta.Parameters) > 0 && len(fc.Parameters) == 0 {
		fc.Parameters = meta.Parameters
	}
	if len(meta.ReturnValues) > 0 && len(fc.ReturnValues) == 0 {
		fc.ReturnValues = meta.ReturnValues
	}
	if meta.Example != "" && fc.Example == "" {
		fc.Example = meta.Example
	}
}
