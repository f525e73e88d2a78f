package types

import (
	"fmt"
	"strings"
)

// Parameter represents a single documented function parameter.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FunctionDoc represents the structured record extracted from one CAPL
// documentation file. A record is valid only when Name is non-empty and at
// least one syntax form was recognized.
type FunctionDoc struct {
	Name         string      `json:"function_name"`
	SyntaxForms  []string    `json:"syntax_forms"`
	Description  string      `json:"description"`
	Parameters   []Parameter `json:"parameters"`
	ReturnValues []string    `json:"return_values"`
	Example      string      `json:"example,omitempty"`
	ValidFor     string      `json:"valid_for,omitempty"`
}

// IsValid reports whether the record meets the minimum extraction contract.
func (d *FunctionDoc) IsValid() bool {
	return d.Name != "" && len(d.SyntaxForms) > 0
}

// String renders the record in a human-readable form for logs and CLI output.
func (d *FunctionDoc) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Function: %s\n", d.Name)
	if d.ValidFor != "" {
		fmt.Fprintf(&b, "Valid for: %s\n", d.ValidFor)
	}
	b.WriteString("Syntax:\n")
	for i, syntax := range d.SyntaxForms {
		fmt.Fprintf(&b, "  Form %d: %s\n", i+1, syntax)
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "Description:\n  %s\n", d.Description)
	}
	if len(d.Parameters) > 0 {
		b.WriteString("Parameters:\n")
		for _, p := range d.Parameters {
			fmt.Fprintf(&b, "  - %s: %s\n", p.Name, p.Description)
		}
	}
	if len(d.ReturnValues) > 0 {
		b.WriteString("Return Values:\n")
		for _, rv := range d.ReturnValues {
			fmt.Fprintf(&b, "  - %s\n", rv)
		}
	}
	if d.Example != "" {
		fmt.Fprintf(&b, "Example:\n%s\n", d.Example)
	}
	return b.String()
}
