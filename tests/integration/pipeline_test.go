package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dshills/capldoc-mcp/internal/index"
	"github.com/dshills/capldoc-mcp/internal/scanner"
	"github.com/dshills/capldoc-mcp/internal/searcher"
	"github.com/dshills/capldoc-mcp/internal/storage"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

// PipelineTestSuite exercises the scan, chunk, index, search pipeline over
// the markdown fixtures.
type PipelineTestSuite struct {
	suite.Suite
	storage     *storage.SQLiteStorage
	store       *index.Store
	searcher    *searcher.Engine
	fixturesDir string
	ctx         context.Context
}

// SetupSuite runs once before all tests
func (s *PipelineTestSuite) SetupSuite() {
	s.ctx = context.Background()

	wd, err := os.Getwd()
	s.Require().NoError(err)
	s.fixturesDir = filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	_, err = os.Stat(s.fixturesDir)
	s.Require().NoError(err, "fixtures directory should exist")
}

// SetupTest runs before each test
func (s *PipelineTestSuite) SetupTest() {
	store, err := storage.NewSQLiteStorage(filepath.Join(s.T().TempDir(), "cache.db"))
	s.Require().NoError(err)
	s.storage = store
	s.store = index.New(store)
	s.searcher = searcher.New(s.store)
}

// TearDownTest runs after each test
func (s *PipelineTestSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

// TestScanFixtures verifies extraction over the fixture corpus
func (s *PipelineTestSuite) TestScanFixtures() {
	docs, failures := scanner.New().Scan([]string{s.fixturesDir})

	names := make(map[string]bool)
	for _, d := range docs {
		names[d.Name] = true
	}
	s.True(names["setTimer"], "fenced syntax fixture should extract")
	s.True(names["output"], "bullet syntax fixture should extract")
	s.True(names["cancelTimer"], "bracketed syntax fixture should extract")
	s.Len(docs, 3)

	s.Require().Len(failures, 1)
	s.Contains(failures[0].Path, "broken.md")
}

// TestFullBuild verifies the complete build pipeline
func (s *PipelineTestSuite) TestFullBuild() {
	snap, stats, err := s.store.Build(s.ctx, []string{s.fixturesDir}, false)
	s.Require().NoError(err)

	s.Equal(3, stats.Functions)
	s.False(stats.FromCache)
	// setTimer: main, parameters, returns, example.
	// output: main, parameters, example. cancelTimer: main, parameters.
	s.Equal(9, stats.Chunks)
	s.Len(snap.Matrix, 9)
	s.NotNil(snap.Model)
}

// TestSearchEndToEnd verifies ranked retrieval over the fixtures
func (s *PipelineTestSuite) TestSearchEndToEnd() {
	_, _, err := s.store.Build(s.ctx, []string{s.fixturesDir}, false)
	s.Require().NoError(err)

	results, err := s.searcher.Search("stop a running timer before expiry", searcher.Options{TopK: 3})
	s.Require().NoError(err)
	s.Require().NotEmpty(results)
	s.Equal("cancelTimer", results[0].Chunk.FunctionName)

	funcs, err := s.searcher.SearchFunctions("transmit a message onto the bus", 3)
	s.Require().NoError(err)
	s.Require().NotEmpty(funcs)
	s.Equal("output", funcs[0].Name)
}

// TestFunctionDetailsEndToEnd verifies merged record assembly
func (s *PipelineTestSuite) TestFunctionDetailsEndToEnd() {
	_, _, err := s.store.Build(s.ctx, []string{s.fixturesDir}, false)
	s.Require().NoError(err)

	fc, err := s.searcher.FunctionContext("setTimer")
	s.Require().NoError(err)
	s.Len(fc.SyntaxForms, 2)
	s.Contains(fc.Description, "timer expires")
	s.Equal("CAN, CANFD, LIN, Ethernet", fc.ValidFor)
	s.Len(fc.Parameters, 2)
	s.NotEmpty(fc.ReturnValues)
	s.Contains(fc.Example, "setTimer(cycle, 100);")

	_, err = s.searcher.FunctionContext("noSuchFunction")
	s.ErrorIs(err, types.ErrFunctionNotFound)
}

// TestCacheReuse verifies a second store reuses the persisted index
func (s *PipelineTestSuite) TestCacheReuse() {
	built, _, err := s.store.Build(s.ctx, []string{s.fixturesDir}, false)
	s.Require().NoError(err)

	// Fresh store over the same cache database.
	second := index.New(s.storage)
	loaded, stats, err := second.Build(s.ctx, []string{s.fixturesDir}, false)
	s.Require().NoError(err)

	s.True(stats.FromCache)
	s.Equal(len(built.Chunks), len(loaded.Chunks))
	s.Equal(built.Functions, loaded.Functions)

	// Cached vectors rank identically.
	e := searcher.New(second)
	results, err := e.Search("stop a running timer", searcher.Options{TopK: 1})
	s.Require().NoError(err)
	s.Require().NotEmpty(results)
	s.Equal("cancelTimer", results[0].Chunk.FunctionName)
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
