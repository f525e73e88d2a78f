// Package searcher ranks indexed chunks against free-text queries using
// cosine similarity over TF-IDF vectors. It offers three views of the same
// index: raw chunk results, per-function aggregation where a function
// scores as its best chunk, and full merged documentation for a single
// named function.
package searcher
