package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ImageRecord is one persisted generated-image document.
type ImageRecord struct {
	Name      string    `json:"image_name"`
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	Alt       string    `json:"alt"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists generated-image records in Postgres. Reads for the gallery
// endpoint go through a small LRU cache that writes invalidate.
type Store struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	recent *lru.Cache[int, []ImageRecord]
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[int, []ImageRecord](64)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, recent: cache}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS generated_images (
    id         BIGSERIAL PRIMARY KEY,
    image_name TEXT NOT NULL DEFAULT '',
    path       TEXT NOT NULL,
    category   TEXT NOT NULL DEFAULT '',
    alt        TEXT NOT NULL DEFAULT '',
    prompt     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
)`)
	})
	return s.schemaErr
}

// InsertMany writes one batch of records in a single transaction, preserving
// slice order. Called at most once per pipeline run.
func (s *Store) InsertMany(ctx context.Context, records []ImageRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO generated_images (image_name, path, category, alt, prompt, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("image record without path")
		}
		if _, err := stmt.ExecContext(ctx, r.Name, r.Path, r.Category, r.Alt, r.Prompt, r.CreatedAt); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.recent.Purge()
	return nil
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ImageRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if limit <= 0 {
		limit = 50
	}
	if cached, ok := s.recent.Get(limit); ok {
		return cached, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT image_name, path, category, alt, prompt, created_at
FROM generated_images
ORDER BY created_at DESC, id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ImageRecord, 0, limit)
	for rows.Next() {
		var r ImageRecord
		if err := rows.Scan(&r.Name, &r.Path, &r.Category, &r.Alt, &r.Prompt, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.recent.Add(limit, records)
	return records, nil
}
