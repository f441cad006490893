package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmytrokrutii/mod-consortia/internal/sharing/instance/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	txcontext "github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
)

// Postgres persists sharing attempts in the coordinator schema.
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

func (s *Postgres) Insert(ctx context.Context, attempt models.SharingInstance) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO sharing_instance (id, instance_id, source_tenant_id, target_tenant_id, status, error)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		attempt.ID, attempt.InstanceIdentifier, attempt.SourceTenantID, attempt.TargetTenantID,
		string(attempt.Status), attempt.Error,
	)
	if err != nil {
		return fmt.Errorf("insert sharing instance: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (models.SharingInstance, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, instance_id, source_tenant_id, target_tenant_id, status, COALESCE(error, '')
		 FROM sharing_instance WHERE id = $1`, id,
	)
	return scanAttempt(row)
}

func (s *Postgres) FindAll(ctx context.Context, filter models.Filter, page paging.Page) ([]models.SharingInstance, int, error) {
	where, args := buildFilter(filter)

	query := fmt.Sprintf(
		`SELECT id, instance_id, source_tenant_id, target_tenant_id, status, COALESCE(error, '')
		 FROM sharing_instance %s ORDER BY id OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2,
	)
	rows, err := s.execer(ctx).QueryContext(ctx, query, append(args, page.Offset, page.Limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query sharing instances: %w", err)
	}
	defer rows.Close()

	var out []models.SharingInstance
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sharing instances: %w", err)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM sharing_instance %s`, where)
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sharing instances: %w", err)
	}
	return out, total, nil
}

func buildFilter(filter models.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.InstanceIdentifier != uuid.Nil {
		add("instance_id", filter.InstanceIdentifier)
	}
	if filter.SourceTenantID != "" {
		add("source_tenant_id", filter.SourceTenantID)
	}
	if filter.TargetTenantID != "" {
		add("target_tenant_id", filter.TargetTenantID)
	}
	if filter.Status != "" {
		add("status", string(filter.Status))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (models.SharingInstance, error) {
	var (
		attempt models.SharingInstance
		status  string
	)
	err := row.Scan(&attempt.ID, &attempt.InstanceIdentifier, &attempt.SourceTenantID,
		&attempt.TargetTenantID, &status, &attempt.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SharingInstance{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.SharingInstance{}, fmt.Errorf("scan sharing instance: %w", err)
	}
	attempt.Status = models.Status(status)
	return attempt, nil
}
