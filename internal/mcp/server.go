package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/capldoc-mcp/internal/index"
	"github.com/dshills/capldoc-mcp/internal/parser"
	"github.com/dshills/capldoc-mcp/internal/scanner"
	"github.com/dshills/capldoc-mcp/internal/searcher"
	"github.com/dshills/capldoc-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "capldoc-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultCacheDir is the default location for the index cache
	DefaultCacheDir = "~/.capldoc/cache"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	storage   *storage.SQLiteStorage
	store     *index.Store
	searcher  *searcher.Engine
	scanner   *scanner.Scanner
	extractor *parser.Extractor
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cacheDir string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Expand home directory if needed
	if cacheDir == "" || cacheDir == DefaultCacheDir {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".capldoc", "cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(cacheDir, "capldoc.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	idx := index.New(store, index.WithLogger(logger))

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		storage:   store,
		store:     idx,
		searcher:  searcher.New(idx, searcher.WithLogger(logger)),
		scanner:   scanner.New(scanner.WithLogger(logger)),
		extractor: parser.New(parser.WithLogger(logger)),
		logger:    logger,
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(semanticSearchTool(), s.handleSemanticSearch)
	s.mcp.AddTool(findFunctionDocsTool(), s.handleFindFunctionDocs)
	s.mcp.AddTool(getFunctionDetailsTool(), s.handleGetFunctionDetails)
	s.mcp.AddTool(parseDocFileTool(), s.handleParseDocFile)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
