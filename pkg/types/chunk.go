package types

import "errors"

// ChunkType identifies which facet of a function record a chunk carries.
type ChunkType string

const (
	ChunkMain         ChunkType = "main"
	ChunkParameters   ChunkType = "parameters"
	ChunkReturnValues ChunkType = "return_values"
	ChunkExample      ChunkType = "example"
)

// ChunkMetadata mirrors the record fields that were used to build the chunk
// text, so a full function context can be reconstructed from chunks alone.
type ChunkMetadata struct {
	SyntaxForms  []string    `json:"syntax_forms,omitempty"`
	Description  string      `json:"description,omitempty"`
	ValidFor     string      `json:"valid_for,omitempty"`
	Parameters   []Parameter `json:"parameters,omitempty"`
	ReturnValues []string    `json:"return_values,omitempty"`
	Example      string      `json:"example,omitempty"`
}

// Chunk is one retrievable unit of text derived from exactly one FunctionDoc.
// Chunks are owned by the index, never mutated after creation, and discarded
// wholesale on rebuild.
type Chunk struct {
	Text         string        `json:"text"`
	FunctionName string        `json:"function_name"`
	Type         ChunkType     `json:"type"`
	Metadata     ChunkMetadata `json:"metadata"`
}

// Valid reports whether t is one of the known chunk types.
func (t ChunkType) Valid() bool {
	switch t {
	case ChunkMain, ChunkParameters, ChunkReturnValues, ChunkExample:
		return true
	}
	return false
}

// ValidateType checks that the chunk type is one of the known values.
func (c *Chunk) ValidateType() error {
	if !c.Type.Valid() {
		return errors.New("invalid chunk type")
	}
	return nil
}

// Validate performs basic integrity checks on the chunk.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.FunctionName == "" {
		return errors.New("chunk function name cannot be empty")
	}
	return c.ValidateType()
}
