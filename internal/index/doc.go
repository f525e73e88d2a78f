// Package index builds and owns the searchable TF-IDF index. A build runs
// the scan, chunk, fit, transform pipeline over the documentation roots and
// publishes the result as an immutable Snapshot under a read-write mutex.
// Indexes are cached in SQLite keyed by the normalized root set, so a
// restart with the same roots skips the pipeline entirely. Concurrent
// builds of the same root set collapse into a single run via singleflight.
package index
