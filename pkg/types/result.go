package types

// ScoredChunk pairs a chunk with its cosine similarity against a query.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// FunctionScore is a function-level aggregate of chunk scores: the best
// similarity seen among the function's chunks for a given query.
type FunctionScore struct {
	Name  string  `json:"function_name"`
	Score float64 `json:"score"`
}
