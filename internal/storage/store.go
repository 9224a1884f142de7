package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/raine/produce-shelf-life/internal/produce"
)

// MemoryPath keeps the cache in process memory; nothing survives a restart.
const MemoryPath = ":memory:"

// SQLiteStore caches prediction annotations by image hash.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens the annotation cache at dbPath, or in memory for MemoryPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		// WAL mode and busy timeout for better concurrency
		dsn = fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	if dbPath != MemoryPath {
		if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dbPath", dbPath).Msg("failed to restrict cache file permissions")
		}
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS annotation_cache (
		image_hash TEXT PRIMARY KEY,
		annotations TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create annotation_cache table: %w", err)
	}
	return nil
}

// GetAnnotations returns the cached annotations for an image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetAnnotations(imageHash string) ([]produce.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var encoded string
	err := s.db.QueryRow(
		"SELECT annotations FROM annotation_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&encoded)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query annotation cache: %w", err)
	}

	var annotations []produce.Annotation
	if err := json.Unmarshal([]byte(encoded), &annotations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached annotations: %w", err)
	}
	return annotations, nil
}

// SetAnnotations stores annotations for an image hash, replacing any previous entry.
func (s *SQLiteStore) SetAnnotations(imageHash string, annotations []produce.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(annotations)
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO annotation_cache (image_hash, annotations)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			annotations = excluded.annotations,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to cache annotations: %w", err)
	}
	return nil
}

// Count returns the number of cached images.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM annotation_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count annotation cache: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
