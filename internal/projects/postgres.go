package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists project records in PostgreSQL as JSONB documents.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			goal TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			document JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_created ON projects (created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, record Record) (Record, error) {
	if record.ID == "" {
		record.ID = "proj_" + uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = "active"
	}

	doc, err := json.Marshal(record.Document)
	if err != nil {
		return Record{}, fmt.Errorf("marshal project document: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO projects (id, name, goal, status, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.Name, record.Goal, record.Status, doc, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("create project: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, goal, status, document, created_at, updated_at
		 FROM projects WHERE id=$1`, id)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get project: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, goal, status, document, created_at, updated_at
		 FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, record Record) (Record, error) {
	record.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(record.Document)
	if err != nil {
		return Record{}, fmt.Errorf("marshal project document: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name=$2, goal=$3, status=$4, document=$5, updated_at=$6 WHERE id=$1`,
		record.ID, record.Name, record.Goal, record.Status, doc, record.UpdatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record Record
		doc    []byte
	)
	if err := row.Scan(&record.ID, &record.Name, &record.Goal, &record.Status, &doc, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return Record{}, err
	}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &record.Document); err != nil {
			return Record{}, fmt.Errorf("decode project document: %w", err)
		}
	}
	return record, nil
}
