package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/capldoc-mcp/internal/vectorizer"
	"github.com/dshills/capldoc-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when no cached index exists for a root set
	ErrNotFound = errors.New("not found")
)

// IndexArtifacts is the persisted form of a built search index: the fitted
// vectorizer model, the chunks, and one vector per chunk, all keyed by the
// root set they were built from. Chunks and Vectors are parallel slices.
type IndexArtifacts struct {
	RootsKey string
	Roots    []string
	Model    *vectorizer.Model
	Chunks   []types.Chunk
	Vectors  [][]float32
	BuiltAt  time.Time
}

// SQLiteStorage persists index artifacts in a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveIndex stores the artifacts for a root set, replacing any previous
// index with the same roots key. The write is transactional: a crash leaves
// either the old index or the new one, never a mix.
func (s *SQLiteStorage) SaveIndex(ctx context.Context, artifacts *IndexArtifacts) error {
	if len(artifacts.Chunks) != len(artifacts.Vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d",
			len(artifacts.Chunks), len(artifacts.Vectors))
	}

	modelJSON, err := json.Marshal(artifacts.Model)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	rootsJSON, err := json.Marshal(artifacts.Roots)
	if err != nil {
		return fmt.Errorf("failed to encode roots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// ON DELETE CASCADE clears the old chunks
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta WHERE roots_key = ?", artifacts.RootsKey); err != nil {
		return fmt.Errorf("failed to clear previous index: %w", err)
	}

	builtAt := artifacts.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO index_meta (roots_key, roots, model, chunk_count, built_at)
		VALUES (?, ?, ?, ?, ?)
	`, artifacts.RootsKey, string(rootsJSON), string(modelJSON), len(artifacts.Chunks), builtAt)
	if err != nil {
		return fmt.Errorf("failed to insert index metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (roots_key, position, function_name, chunk_type, text, metadata, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, chunk := range artifacts.Chunks {
		metaJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode chunk metadata: %w", err)
		}
		_, err = stmt.ExecContext(ctx, artifacts.RootsKey, i, chunk.FunctionName,
			string(chunk.Type), chunk.Text, string(metaJSON), serializeVector(artifacts.Vectors[i]))
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadIndex retrieves the artifacts for a root set. Returns ErrNotFound
// when no index has been saved for rootsKey.
func (s *SQLiteStorage) LoadIndex(ctx context.Context, rootsKey string) (*IndexArtifacts, error) {
	var (
		rootsJSON  string
		modelJSON  string
		chunkCount int
		builtAt    time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT roots, model, chunk_count, built_at FROM index_meta WHERE roots_key = ?
	`, rootsKey).Scan(&rootsJSON, &modelJSON, &chunkCount, &builtAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}

	artifacts := &IndexArtifacts{
		RootsKey: rootsKey,
		BuiltAt:  builtAt,
		Chunks:   make([]types.Chunk, 0, chunkCount),
		Vectors:  make([][]float32, 0, chunkCount),
	}
	if err := json.Unmarshal([]byte(rootsJSON), &artifacts.Roots); err != nil {
		return nil, fmt.Errorf("failed to decode roots: %w", err)
	}
	if err := json.Unmarshal([]byte(modelJSON), &artifacts.Model); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT function_name, chunk_type, text, metadata, vector
		FROM chunks WHERE roots_key = ? ORDER BY position
	`, rootsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			chunk    types.Chunk
			metaJSON string
			blob     []byte
		)
		var chunkType string
		if err := rows.Scan(&chunk.FunctionName, &chunkType, &chunk.Text, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunk.Type = types.ChunkType(chunkType)
		if err := json.Unmarshal([]byte(metaJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
		}
		artifacts.Chunks = append(artifacts.Chunks, chunk)
		artifacts.Vectors = append(artifacts.Vectors, deserializeVector(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(artifacts.Chunks) != chunkCount {
		return nil, fmt.Errorf("cache corrupt: expected %d chunks, found %d", chunkCount, len(artifacts.Chunks))
	}
	return artifacts, nil
}

// HasIndex reports whether a cached index exists for rootsKey
func (s *SQLiteStorage) HasIndex(ctx context.Context, rootsKey string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM index_meta WHERE roots_key = ?", rootsKey).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteIndex removes the cached index for a root set, if present
func (s *SQLiteStorage) DeleteIndex(ctx context.Context, rootsKey string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM index_meta WHERE roots_key = ?", rootsKey)
	return err
}
