// Package parser extracts structured function records from CAPL
// documentation markdown files.
//
// The corpus follows a loosely consistent heading convention: one function
// per file, a top-level heading with the function name, and second-level
// sections for syntax, description, parameters, return values, and an
// example. The extractor is a line-oriented state machine that tolerates
// formatting drift: malformed lines are logged and skipped, and a document
// that never yields a name plus a syntax form produces no record rather than
// an error.
//
// # Basic Usage
//
//	e := parser.New()
//	doc, err := e.ExtractFile("/docs/setTimer.md")
//	if err != nil {
//	    log.Fatal(err) // unreadable file
//	}
//	if doc == nil {
//	    // readable but not extractable
//	}
//
// # Syntax Form Recognition
//
// Syntax forms are mined from the Function Syntax, Method Syntax, and
// Selectors sections. Fenced code blocks contribute each non-comment line
// verbatim; outside a fence an ordered list of strategies is consulted:
// inline code spans that resemble code, bare bullets with a type hint or
// angle brackets, and bracketed tokens that pass the same code heuristic.
// The strategy order is part of the contract and each strategy is
// independently testable.
package parser
