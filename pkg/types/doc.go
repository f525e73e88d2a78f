// Package types provides shared type definitions for the CaplDoc MCP server.
//
// This package defines the domain types used across components: structured
// function records, retrievable chunks, and scored search results.
//
// # Core Types
//
// FunctionDoc represents the normalized extraction result for one documented
// CAPL function:
//
//	doc := &types.FunctionDoc{
//	    Name:        "setTimer",
//	    SyntaxForms: []string{"void setTimer(msTimer t, long duration)"},
//	    Description: "Starts the timer with the given duration.",
//	}
//
// A record is considered extractable only when both Name and SyntaxForms are
// present; anything less is excluded from the corpus rather than treated as
// an error.
//
// Chunk represents a retrievable text unit derived from a record. Each valid
// record produces one main chunk plus up to three optional chunks
// (parameters, return values, example), each carrying typed metadata that
// mirrors the source fields:
//
//	chunk := types.Chunk{
//	    Text:         "setTimer parameters:\n- t: the timer\n",
//	    FunctionName: "setTimer",
//	    Type:         types.ChunkParameters,
//	}
//
// # Search Results
//
// ScoredChunk pairs a chunk with its cosine similarity against a query, and
// FunctionScore carries the function-level aggregate (best chunk score per
// function). Scores are in [0, 1], higher is better.
package types
