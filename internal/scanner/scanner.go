package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/capldoc-mcp/internal/parser"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

// docExtension is the fixed extension of corpus documents.
const docExtension = ".md"

// Failure records one document that did not contribute a record, with the
// reason it was skipped. The batch never aborts on individual failures.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Match pairs a discovered document path with its parsed record. Doc is nil
// when the file matched the search but yielded no structured record.
type Match struct {
	Path string             `json:"path"`
	Doc  *types.FunctionDoc `json:"doc,omitempty"`
}

// Scanner enumerates documentation files under one or more roots and runs
// the extractor over each of them.
type Scanner struct {
	extractor *parser.Extractor
	logger    *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithExtractor sets a custom extractor instance.
func WithExtractor(e *parser.Extractor) Option {
	return func(s *Scanner) {
		if e != nil {
			s.extractor = e
		}
	}
}

// New creates a new Scanner instance.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		extractor: parser.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan recursively parses every matching document under the given roots.
// Record order follows filesystem traversal order; unreadable documents and
// documents with no extractable record land in the failure list and scanning
// continues.
func (s *Scanner) Scan(roots []string) ([]types.FunctionDoc, []Failure) {
	var docs []types.FunctionDoc
	var failures []Failure

	for _, root := range roots {
		s.walkDocs(root, func(path string) {
			doc, err := s.extractor.ExtractFile(path)
			if err != nil {
				s.logger.Warn("unreadable document", "path", path, "error", err)
				failures = append(failures, Failure{Path: path, Reason: err.Error()})
				return
			}
			if doc == nil {
				s.logger.Debug("no structured record", "path", path)
				failures = append(failures, Failure{Path: path, Reason: "no structured record extracted"})
				return
			}
			docs = append(docs, *doc)
		})
	}

	s.logger.Info("corpus scan complete", "records", len(docs), "failures", len(failures))
	return docs, failures
}

// ScanForName finds documents whose content mentions the given name
// (case-insensitive) and parses up to maxResults of them.
func (s *Scanner) ScanForName(name string, roots []string, maxResults int) []Match {
	if maxResults <= 0 {
		maxResults = 10
	}
	needle := strings.ToLower(name)

	var matches []Match
	for _, root := range roots {
		if len(matches) >= maxResults {
			break
		}
		s.walkDocs(root, func(path string) {
			if len(matches) >= maxResults {
				return
			}
			content, err := os.ReadFile(path)
			if err != nil {
				s.logger.Warn("unreadable document", "path", path, "error", err)
				return
			}
			if !strings.Contains(strings.ToLower(string(content)), needle) {
				return
			}
			doc := s.extractor.Extract(strings.ToValidUTF8(string(content), "�"))
			matches = append(matches, Match{Path: path, Doc: doc})
		})
	}
	return matches
}

// walkDocs visits every matching document under root in traversal order.
// Hidden directories are skipped; traversal errors are logged and the walk
// continues.
func (s *Scanner) walkDocs(root string, visit func(path string)) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("traversal error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), docExtension) {
			return nil
		}
		visit(path)
		return nil
	})
	if err != nil {
		s.logger.Warn("walk aborted", "root", root, "error", err)
	}
}
