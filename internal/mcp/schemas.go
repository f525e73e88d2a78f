package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// pathProperty is the shared docs_path parameter definition
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a directory of CAPL documentation markdown files",
	}
}

// semanticSearchTool returns the tool definition for semantic_search
func semanticSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantic_search",
		Description: "Search CAPL function documentation with a free-text query, ranked by relevance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"docs_path": pathProperty(),
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-50)",
					"default":     5,
					"minimum":     1,
					"maximum":     50,
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum similarity score threshold (0.0-1.0)",
					"default":     0.0,
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"chunk_type": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one chunk type",
					"enum":        []string{"main", "parameters", "return_values", "example"},
				},
				"rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rebuild the index from the documents instead of using the cache",
					"default":     false,
				},
			},
			Required: []string{"docs_path", "query"},
		},
	}
}

// findFunctionDocsTool returns the tool definition for find_function_docs
func findFunctionDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_function_docs",
		Description: "Find documentation files mentioning a CAPL function by name and extract their records",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"docs_path": pathProperty(),
				"function_name": map[string]interface{}{
					"type":        "string",
					"description": "CAPL function name to look for (case-insensitive)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of files to return (1-50)",
					"default":     10,
					"minimum":     1,
					"maximum":     50,
				},
			},
			Required: []string{"docs_path", "function_name"},
		},
	}
}

// getFunctionDetailsTool returns the tool definition for get_function_details
func getFunctionDetailsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_function_details",
		Description: "Return the complete merged documentation for one CAPL function from the index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"docs_path": pathProperty(),
				"function_name": map[string]interface{}{
					"type":        "string",
					"description": "Exact CAPL function name (case-insensitive)",
				},
			},
			Required: []string{"docs_path", "function_name"},
		},
	}
}

// parseDocFileTool returns the tool definition for parse_doc_file
func parseDocFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "parse_doc_file",
		Description: "Parse a single CAPL documentation markdown file into a structured record",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a markdown documentation file",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report whether a search index is loaded and its statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
