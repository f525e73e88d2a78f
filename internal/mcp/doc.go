// Package mcp exposes the documentation index over the Model Context
// Protocol. Five tools are registered: semantic_search for ranked free-text
// queries, find_function_docs for name lookup across files,
// get_function_details for one merged record, parse_doc_file for single-file
// extraction, and get_status for index state. All tool responses are JSON
// with a found or ready flag; protocol-level errors are reserved for invalid
// parameters and internal failures.
package mcp
