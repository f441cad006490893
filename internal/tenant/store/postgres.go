package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/dmytrokrutii/mod-consortia/internal/tenant/models"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	txcontext "github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
)

// Postgres persists tenant rows in the coordinator schema.
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

const tenantColumns = `id, name, consortium_id, is_central, COALESCE(setup_status, '')`

func (s *Postgres) Insert(ctx context.Context, tenant models.Tenant) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO tenant (id, name, consortium_id, is_central, setup_status)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
		tenant.ID, tenant.Name, tenant.ConsortiumID, tenant.IsCentral, string(tenant.SetupStatus),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, tenantID string) (models.Tenant, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenant WHERE id = $1`, tenantID,
	)
	return scanTenant(row)
}

func (s *Postgres) FindAll(ctx context.Context) ([]models.Tenant, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenant ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var out []models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return out, nil
}

func (s *Postgres) FindCentral(ctx context.Context) (models.Tenant, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenant WHERE is_central LIMIT 1`,
	)
	return scanTenant(row)
}

func (s *Postgres) SetSetupStatus(ctx context.Context, tenantID string, status models.SetupStatus) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE tenant SET setup_status = $2 WHERE id = $1`,
		tenantID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update tenant setup status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant setup status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (models.Tenant, error) {
	var (
		tenant models.Tenant
		status string
	)
	err := row.Scan(&tenant.ID, &tenant.Name, &tenant.ConsortiumID, &tenant.IsCentral, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tenant{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Tenant{}, fmt.Errorf("scan tenant: %w", err)
	}
	tenant.SetupStatus = models.SetupStatus(status)
	return tenant, nil
}
