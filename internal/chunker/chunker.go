package chunker

import (
	"fmt"
	"strings"

	"github.com/dshills/capldoc-mcp/pkg/types"
)

// syntaxSeparator joins syntax forms on the main chunk's syntax line.
const syntaxSeparator = " | "

// Builder expands structured function records into retrievable chunks.
type Builder struct{}

// New creates a new Builder instance.
func New() *Builder {
	return &Builder{}
}

// Build derives 1-4 chunks from every record: always a main chunk, plus a
// parameters, return-values, and example chunk when the corresponding field
// is non-empty. Chunk order follows record order.
func (b *Builder) Build(docs []types.FunctionDoc) []types.Chunk {
	chunks := make([]types.Chunk, 0, len(docs))
	for i := range docs {
		chunks = append(chunks, b.buildDoc(&docs[i])...)
	}
	return chunks
}

// buildDoc emits the chunks for a single record.
func (b *Builder) buildDoc(doc *types.FunctionDoc) []types.Chunk {
	chunks := []types.Chunk{b.mainChunk(doc)}

	if len(doc.Parameters) > 0 {
		chunks = append(chunks, b.parametersChunk(doc))
	}
	if len(doc.ReturnValues) > 0 {
		chunks = append(chunks, b.returnValuesChunk(doc))
	}
	if doc.Example != "" {
		chunks = append(chunks, b.exampleChunk(doc))
	}
	return chunks
}

// mainChunk carries the function name, syntax forms, description, and
// valid-for tag, each on its own labeled line.
func (b *Builder) mainChunk(doc *types.FunctionDoc) types.Chunk {
	var text strings.Builder
	text.WriteString(doc.Name + "\n")
	if len(doc.SyntaxForms) > 0 {
		text.WriteString("Syntax: " + strings.Join(doc.SyntaxForms, syntaxSeparator) + "\n")
	}
	if doc.Description != "" {
		text.WriteString("Description: " + doc.Description + "\n")
	}
	if doc.ValidFor != "" {
		text.WriteString("Valid for: " + doc.ValidFor + "\n")
	}

	return types.Chunk{
		Text:         text.String(),
		FunctionName: doc.Name,
		Type:         types.ChunkMain,
		Metadata: types.ChunkMetadata{
			SyntaxForms: doc.SyntaxForms,
			Description: doc.Description,
			ValidFor:    doc.ValidFor,
		},
	}
}

func (b *Builder) parametersChunk(doc *types.FunctionDoc) types.Chunk {
	var text strings.Builder
	fmt.Fprintf(&text, "%s parameters:\n", doc.Name)
	for _, p := range doc.Parameters {
		fmt.Fprintf(&text, "- %s: %s\n", p.Name, p.Description)
	}

	return types.Chunk{
		Text:         text.String(),
		FunctionName: doc.Name,
		Type:         types.ChunkParameters,
		Metadata:     types.ChunkMetadata{Parameters: doc.Parameters},
	}
}

func (b *Builder) returnValuesChunk(doc *types.FunctionDoc) types.Chunk {
	var text strings.Builder
	fmt.Fprintf(&text, "%s returns:\n", doc.Name)
	for _, rv := range doc.ReturnValues {
		fmt.Fprintf(&text, "- %s\n", rv)
	}

	return types.Chunk{
		Text:         text.String(),
		FunctionName: doc.Name,
		Type:         types.ChunkReturnValues,
		Metadata:     types.ChunkMetadata{ReturnValues: doc.ReturnValues},
	}
}

func (b *Builder) exampleChunk(doc *types.FunctionDoc) types.Chunk {
	return types.Chunk{
		Text:         fmt.Sprintf("%s example:\n%s", doc.Name, doc.Example),
		FunctionName: doc.Name,
		Type:         types.ChunkExample,
		Metadata:     types.ChunkMetadata{Example: doc.Example},
	}
}
