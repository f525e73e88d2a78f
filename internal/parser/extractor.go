package parser

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/dshills/capldoc-mcp/pkg/types"
)

// Section titles recognized by the extractor. Comparison is exact, matching
// the heading convention of the documentation corpus.
const (
	sectionDescription  = "Description"
	sectionParameters   = "Parameters"
	sectionReturnValues = "Return Values"
	sectionExample      = "Example"
)

// syntaxSections are the second-level headings whose content is mined for
// syntax forms.
var syntaxSections = map[string]bool{
	"Function Syntax": true,
	"Method Syntax":   true,
	"Selectors":       true,
}

// validForTag is the bracketed literal that must appear on the line for
// valid-for extraction to trigger. Documents using a different casing or
// spacing are skipped on purpose.
const validForTag = "[Valid for]"

// boldBulletRe matches "- **name**: description" bullets used in the
// Parameters and Return Values sections.
var boldBulletRe = regexp.MustCompile(`^\s*-\s*\*\*([^*]+)\*\*\s*:?\s*(.*)`)

// Extractor converts one raw documentation file into a structured record.
// It is tolerant by design: malformed lines are skipped, never fatal.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// New creates a new Extractor instance.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile reads and extracts a single documentation file. Read failures
// are returned as errors; undecodable bytes are replaced rather than treated
// as fatal. A readable file with no extractable record yields (nil, nil).
func (e *Extractor) ExtractFile(path string) (*types.FunctionDoc, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return e.Extract(strings.ToValidUTF8(string(content), "�")), nil
}

// extraction holds the per-document working state of the line state machine.
// The accumulation buffers are flushed into the record on every section
// transition and once more at end of input.
type extraction struct {
	doc            types.FunctionDoc
	section        string
	syntaxBuffer   []string
	paramBuffer    []types.Parameter
	returnBuffer   []string
	exampleLines   []string
	inSyntaxFence  bool
	inExampleFence bool
}

// flush moves any buffered section data into the record. Buffers are
// section-scoped working lists, drained on every section change, not only
// when leaving their home section.
func (x *extraction) flush() {
	if len(x.paramBuffer) > 0 {
		x.doc.Parameters = append(x.doc.Parameters, x.paramBuffer...)
		x.paramBuffer = nil
	}
	if len(x.returnBuffer) > 0 {
		x.doc.ReturnValues = append(x.doc.ReturnValues, x.returnBuffer...)
		x.returnBuffer = nil
	}
	if len(x.syntaxBuffer) > 0 {
		x.doc.SyntaxForms = append(x.doc.SyntaxForms, x.syntaxBuffer...)
		x.syntaxBuffer = nil
	}
}

// Extract runs the line-oriented state machine over the document content and
// returns the structured record, or nil when the document does not yield a
// name plus at least one syntax form.
func (e *Extractor) Extract(content string) *types.FunctionDoc {
	lines := strings.Split(content, "\n")
	x := &extraction{}

	for i, line := range lines {
		// Function name from the first top-level heading only.
		if strings.HasPrefix(line, "# ") && x.doc.Name == "" {
			x.doc.Name = headingName(line[2:])
			e.logger.Debug("found function name", "name", x.doc.Name)
			continue
		}

		// "Valid for" marker with its bracketed tag on the same line.
		if strings.Contains(line, validForTag) {
			x.doc.ValidFor = validForValue(line, lines, i)
			e.logger.Debug("valid for", "value", x.doc.ValidFor)
			continue
		}

		// Section transitions flush all accumulation buffers.
		if strings.HasPrefix(line, "## ") {
			x.section = strings.TrimSpace(line[3:])
			e.logger.Debug("switched section", "section", x.section)
			x.flush()
			continue
		}

		switch {
		case syntaxSections[x.section]:
			e.consumeSyntaxLine(x, line)
		case x.section == sectionDescription:
			consumeDescriptionLine(x, line)
		case x.section == sectionParameters:
			consumeParameterLine(x, line)
		case x.section == sectionReturnValues:
			consumeReturnLine(x, line)
		case x.section == sectionExample:
			consumeExampleLine(x, line)
		}
	}

	x.flush()

	if !x.doc.IsValid() {
		e.logger.Debug("incomplete function info, skipped", "name", x.doc.Name)
		return nil
	}
	return &x.doc
}

// consumeSyntaxLine handles one line inside a syntax section. Fenced code
// content is collected verbatim (minus comments); outside a fence the line
// runs through the ordered extraction strategies.
func (e *Extractor) consumeSyntaxLine(x *extraction, line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "```") {
		x.inSyntaxFence = !x.inSyntaxFence
		return
	}

	if x.inSyntaxFence {
		if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			x.syntaxBuffer = append(x.syntaxBuffer, trimmed)
			e.logger.Debug("added syntax line", "strategy", "fenced-code", "form", trimmed)
		}
		return
	}

	for _, strat := range syntaxStrategies {
		forms, ok := strat.extract(line)
		if !ok {
			continue
		}
		x.syntaxBuffer = append(x.syntaxBuffer, forms...)
		e.logger.Debug("added syntax forms", "strategy", strat.name, "forms", forms)
		return
	}
}

// consumeDescriptionLine appends a qualifying line to the running
// description, space-separated.
func consumeDescriptionLine(x *extraction, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
		return
	}
	if x.doc.Description != "" {
		x.doc.Description += " " + strings.TrimSpace(line)
	} else {
		x.doc.Description = strings.TrimSpace(line)
	}
}

// consumeParameterLine handles "- **name**: description" bullets plus
// continuation lines appended to the previous parameter.
func consumeParameterLine(x *extraction, line string) {
	if m := boldBulletRe.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		// A multi-token name carries a type prefix, e.g. "byte key[]";
		// the last token, minus array brackets, is the parameter name.
		if parts := strings.Fields(name); len(parts) > 1 {
			name = strings.ReplaceAll(parts[len(parts)-1], "[]", "")
		}
		x.paramBuffer = append(x.paramBuffer, types.Parameter{
			Name:        name,
			Description: strings.TrimSpace(m[2]),
		})
		return
	}
	if strings.TrimSpace(line) != "" && len(x.paramBuffer) > 0 {
		last := &x.paramBuffer[len(x.paramBuffer)-1]
		last.Description += " " + strings.TrimSpace(line)
	}
}

// consumeReturnLine handles bold bullets, plain "- value: description"
// bullets, and continuation lines in the Return Values section.
func consumeReturnLine(x *extraction, line string) {
	trimmed := strings.TrimSpace(line)
	if m := boldBulletRe.FindStringSubmatch(line); m != nil {
		x.returnBuffer = append(x.returnBuffer,
			fmt.Sprintf("%s: %s", strings.TrimSpace(m[1]), strings.TrimSpace(m[2])))
		return
	}
	if strings.HasPrefix(trimmed, "-") && strings.Contains(line, ":") {
		x.returnBuffer = append(x.returnBuffer, strings.TrimSpace(trimmed[1:]))
		return
	}
	if trimmed != "" && len(x.returnBuffer) > 0 {
		x.returnBuffer[len(x.returnBuffer)-1] += " " + trimmed
	}
}

// consumeExampleLine buffers fenced code verbatim. The first closed block
// becomes the example; later blocks never overwrite it.
func consumeExampleLine(x *extraction, line string) {
	if strings.HasPrefix(strings.TrimSpace(line), "```") {
		x.inExampleFence = !x.inExampleFence
		if !x.inExampleFence && len(x.exampleLines) > 0 && x.doc.Example == "" {
			x.doc.Example = strings.Join(x.exampleLines, "\n")
		}
		return
	}
	if x.inExampleFence && x.doc.Example == "" {
		x.exampleLines = append(x.exampleLines, line)
	}
}

// headingName extracts the function name from a top-level heading body,
// truncating at a ": " or "<" separator when present.
func headingName(header string) string {
	header = strings.TrimSpace(header)
	if strings.Contains(header, ": ") {
		header = header[:strings.Index(header, ":")]
	} else if idx := strings.Index(header, "<"); idx >= 0 {
		header = header[:idx]
	}
	return strings.TrimSpace(header)
}

// validForValue extracts the valid-for text that follows the bracketed tag,
// preferring same-line trailing text after a delimiter and falling back to
// the literal next line.
func validForValue(line string, lines []string, i int) string {
	rest := line[strings.Index(line, validForTag)+len(validForTag):]
	// Drop a markdown link target directly after the tag.
	if strings.HasPrefix(rest, "(") {
		if end := strings.Index(rest, ")"); end >= 0 {
			rest = rest[end+1:]
		}
	}
	if idx := strings.Index(rest, ":"); idx >= 0 {
		rest = rest[idx+1:]
	}
	// Bullet separators delimit unrelated trailing content.
	if idx := strings.Index(rest, "•"); idx >= 0 {
		rest = rest[:idx]
	}
	if value := strings.TrimSpace(rest); value != "" {
		return value
	}
	if i+1 < len(lines) {
		return strings.TrimSpace(lines[i+1])
	}
	return ""
}
