package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	txcontext "github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
)

// Postgres persists consortium rows in the coordinator schema.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM consortium`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count consortia: %w", err)
	}
	return count, nil
}

func (s *Postgres) Insert(ctx context.Context, consortium models.Consortium) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO consortium (id, name) VALUES ($1, $2)`,
		consortium.ID, consortium.Name,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert consortium: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (models.Consortium, error) {
	var consortium models.Consortium
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, name FROM consortium WHERE id = $1`, id,
	).Scan(&consortium.ID, &consortium.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Consortium{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Consortium{}, fmt.Errorf("find consortium: %w", err)
	}
	return consortium, nil
}

func (s *Postgres) Update(ctx context.Context, consortium models.Consortium) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE consortium SET name = $2 WHERE id = $1`,
		consortium.ID, consortium.Name,
	)
	if err != nil {
		return fmt.Errorf("update consortium: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update consortium: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindAll(ctx context.Context, limit int) ([]models.Consortium, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT id, name FROM consortium ORDER BY name LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query consortia: %w", err)
	}
	defer rows.Close()

	var out []models.Consortium
	for rows.Next() {
		var consortium models.Consortium
		if err := rows.Scan(&consortium.ID, &consortium.Name); err != nil {
			return nil, fmt.Errorf("scan consortium: %w", err)
		}
		out = append(out, consortium)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consortia: %w", err)
	}
	return out, nil
}
