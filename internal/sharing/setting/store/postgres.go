package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	txcontext "github.com/dmytrokrutii/mod-consortia/pkg/platform/tx"
)

// Postgres persists distribution rows in the coordinator schema.
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

func (s *Postgres) FindTenantsBySettingID(ctx context.Context, settingID uuid.UUID) (map[string]struct{}, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT tenant_id FROM sharing_setting WHERE setting_id = $1`, settingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sharing settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("scan sharing setting: %w", err)
		}
		out[tenantID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sharing settings: %w", err)
	}
	return out, nil
}

func (s *Postgres) SaveAll(ctx context.Context, settingID uuid.UUID, tenantIDs []string) error {
	if len(tenantIDs) == 0 {
		return nil
	}
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO sharing_setting (id, setting_id, tenant_id)
		 SELECT gen_random_uuid(), $1, t FROM unnest($2::text[]) AS t
		 ON CONFLICT (setting_id, tenant_id) DO NOTHING`,
		settingID, pq.Array(tenantIDs),
	)
	if err != nil {
		return fmt.Errorf("insert sharing settings: %w", err)
	}
	return nil
}

func (s *Postgres) ExistsBySettingID(ctx context.Context, settingID uuid.UUID) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sharing_setting WHERE setting_id = $1)`, settingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sharing setting: %w", err)
	}
	return exists, nil
}

func (s *Postgres) DeleteBySettingID(ctx context.Context, settingID uuid.UUID) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM sharing_setting WHERE setting_id = $1`, settingID,
	)
	if err != nil {
		return fmt.Errorf("delete sharing settings: %w", err)
	}
	return nil
}
