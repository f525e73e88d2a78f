package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/capldoc-mcp/internal/searcher"
	"github.com/dshills/capldoc-mcp/internal/storage"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleSemanticSearch handles the semantic_search tool invocation
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	docsPath, err := requiredPath(args)
	if err != nil {
		return nil, err
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultTopK)
	if limit < 1 || limit > 50 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 50", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	minScore := getFloatDefault(args, "min_score", 0)
	chunkType := types.ChunkType(getStringDefault(args, "chunk_type", ""))
	if chunkType != "" && !chunkType.Valid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunk_type", map[string]interface{}{
			"param": "chunk_type",
			"value": string(chunkType),
		})
	}
	rebuild := getBoolDefault(args, "rebuild", false)

	snap, stats, err := s.store.Build(ctx, []string{docsPath}, rebuild)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results, err := s.searcher.Search(query, searcher.Options{
		TopK:      limit,
		MinScore:  minScore,
		ChunkType: chunkType,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"found":   false,
			"query":   query,
			"message": "No matching documentation found.",
		})), nil
	}

	topFuncs, err := s.searcher.SearchFunctions(query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		items = append(items, map[string]interface{}{
			"function_name": r.Chunk.FunctionName,
			"chunk_type":    string(r.Chunk.Type),
			"score":         r.Score,
			"text":          r.Chunk.Text,
			"metadata":      r.Chunk.Metadata,
		})
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"found":         true,
		"query":         query,
		"top_functions": topFuncs,
		"best_chunks":   items,
		"indexed_funcs": snap.Functions,
		"from_cache":    stats.FromCache,
	})), nil
}

// handleFindFunctionDocs handles the find_function_docs tool invocation
func (s *Server) handleFindFunctionDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	docsPath, err := requiredPath(args)
	if err != nil {
		return nil, err
	}
	name, ok := args["function_name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "function_name parameter is required", map[string]interface{}{
			"param":  "function_name",
			"reason": "missing or empty",
		})
	}
	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 50 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 50", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	matches := s.scanner.ScanForName(name, []string{docsPath}, limit)
	if len(matches) == 0 {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"found":         false,
			"function_name": name,
			"message":       fmt.Sprintf("No documentation files mention %q.", name),
		})), nil
	}

	items := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		item := map[string]interface{}{"file": m.Path}
		if m.Doc != nil {
			item["record"] = m.Doc
		}
		items = append(items, item)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"found":         true,
		"function_name": name,
		"matches":       items,
	})), nil
}

// handleGetFunctionDetails handles the get_function_details tool invocation
func (s *Server) handleGetFunctionDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	docsPath, err := requiredPath(args)
	if err != nil {
		return nil, err
	}
	name, ok := args["function_name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "function_name parameter is required", map[string]interface{}{
			"param":  "function_name",
			"reason": "missing or empty",
		})
	}

	if _, _, err := s.store.Build(ctx, []string{docsPath}, false); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	fc, err := s.searcher.FunctionContext(name)
	if errors.Is(err, types.ErrFunctionNotFound) {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"found":         false,
			"function_name": name,
			"message":       fmt.Sprintf("Function %q is not in the index.", name),
		})), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"found":    true,
		"function": fc,
	})), nil
}

// handleParseDocFile handles the parse_doc_file tool invocation
func (s *Server) handleParseDocFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}
	if !filepath.IsAbs(filePath) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid file_path", map[string]interface{}{
			"param":  "file_path",
			"reason": ErrPathNotAbsolute.Error(),
		})
	}

	doc, err := s.extractor.ExtractFile(filePath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "failed to read file", map[string]interface{}{
			"param":  "file_path",
			"reason": err.Error(),
		})
	}
	if doc == nil {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"found":   false,
			"file":    filePath,
			"message": "No function documentation could be extracted from this file.",
		})), nil
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"found":  true,
		"file":   filePath,
		"record": doc,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.store.Snapshot()
	if errors.Is(err, types.ErrIndexNotReady) {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"ready":   false,
			"message": "No index loaded. Run semantic_search to build one.",
			"server": map[string]interface{}{
				"name":       ServerName,
				"version":    ServerVersion,
				"build_mode": buildModeString(),
			},
		})), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read index state", map[string]interface{}{
			"error": err.Error(),
		})
	}

	vocabulary := 0
	if snap.Model != nil {
		vocabulary = len(snap.Model.Vocabulary)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"ready": true,
		"index": map[string]interface{}{
			"roots":      snap.Roots,
			"functions":  snap.Functions,
			"chunks":     len(snap.Chunks),
			"vocabulary": vocabulary,
			"generation": snap.Generation,
			"built_at":   snap.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"server": map[string]interface{}{
			"name":       ServerName,
			"version":    ServerVersion,
			"build_mode": buildModeString(),
		},
	})), nil
}

// Helper functions

// buildModeString reports which SQLite driver this binary carries
func buildModeString() string {
	return storage.BuildMode
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// requiredPath extracts and validates the docs_path argument
func requiredPath(args map[string]interface{}) (string, error) {
	path, ok := args["docs_path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "docs_path parameter is required", map[string]interface{}{
			"param":  "docs_path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid docs_path", map[string]interface{}{
			"param":  "docs_path",
			"reason": err.Error(),
		})
	}
	return path, nil
}

// validatePath checks if a path is an accessible documentation directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	// Check for markdown files
	hasDocs := false
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(p), ".md") {
			hasDocs = true
		}
		return nil
	})
	if !hasDocs {
		return ErrNoDocFiles
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoDocFiles      = errors.New("directory does not contain markdown documentation files")
)
