// Package storage persists built search indexes in a SQLite cache database.
// Each root set maps to one stored index: the fitted vectorizer model, the
// chunks, and their TF-IDF vectors as compact float32 blobs. Saving is
// transactional so a cache file never holds a half-written index.
//
// Two SQLite drivers are supported via build tags: the default pure Go
// driver (modernc.org/sqlite) and the CGO driver (github.com/mattn/go-sqlite3)
// behind the sqlite_vec tag.
package storage
