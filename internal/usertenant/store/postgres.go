package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dmytrokrutii/mod-consortia/internal/usertenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/paging"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	txcontext "github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
)

// Postgres persists user-tenant associations in the coordinator schema.
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

func (s *Postgres) Insert(ctx context.Context, association models.UserTenant) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO user_tenant (id, user_id, username, tenant_id, is_primary)
		 VALUES ($1, $2, $3, $4, $5)`,
		association.ID, association.UserID, association.Username, association.TenantID, association.IsPrimary,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user tenant: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (models.UserTenant, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, username, tenant_id, is_primary FROM user_tenant WHERE id = $1`, id,
	)
	return scanUserTenant(row)
}

func (s *Postgres) FindAll(ctx context.Context, page paging.Page) ([]models.UserTenant, int, error) {
	return s.findPaged(ctx,
		`SELECT id, user_id, username, tenant_id, is_primary FROM user_tenant ORDER BY id OFFSET $1 LIMIT $2`,
		`SELECT COUNT(*) FROM user_tenant`,
		[]any{page.Offset, page.Limit}, nil,
	)
}

func (s *Postgres) FindByUserID(ctx context.Context, userID uuid.UUID, page paging.Page) ([]models.UserTenant, int, error) {
	return s.findPaged(ctx,
		`SELECT id, user_id, username, tenant_id, is_primary FROM user_tenant WHERE user_id = $1 ORDER BY id OFFSET $2 LIMIT $3`,
		`SELECT COUNT(*) FROM user_tenant WHERE user_id = $1`,
		[]any{userID, page.Offset, page.Limit}, []any{userID},
	)
}

func (s *Postgres) FindByUsernameAndTenantID(ctx context.Context, username, tenantID string) (models.UserTenant, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, username, tenant_id, is_primary FROM user_tenant
		 WHERE username = $1 AND tenant_id = $2`,
		username, tenantID,
	)
	return scanUserTenant(row)
}

func (s *Postgres) DeleteByUserIDAndTenantID(ctx context.Context, userID uuid.UUID, tenantID string) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM user_tenant WHERE user_id = $1 AND tenant_id = $2`,
		userID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("delete user tenant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user tenant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) findPaged(ctx context.Context, query, countQuery string, args, countArgs []any) ([]models.UserTenant, int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query user tenants: %w", err)
	}
	defer rows.Close()

	var out []models.UserTenant
	for rows.Next() {
		association, err := scanUserTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, association)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user tenants: %w", err)
	}

	var total int
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user tenants: %w", err)
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserTenant(row rowScanner) (models.UserTenant, error) {
	var association models.UserTenant
	err := row.Scan(&association.ID, &association.UserID, &association.Username, &association.TenantID, &association.IsPrimary)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserTenant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.UserTenant{}, fmt.Errorf("scan user tenant: %w", err)
	}
	return association, nil
}
