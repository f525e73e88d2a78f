// Package chunker converts extracted function records into text chunks for
// indexing. Every record yields a main chunk with its name, syntax forms,
// description, and valid-for tag; records with parameters, return values, or
// an example yield one additional chunk per populated field so that a query
// about a parameter list or a code sample can match independently of the
// description.
package chunker
