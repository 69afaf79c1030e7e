package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplySchema executes the DDL statements carried by the storage packages.
// Statements must be idempotent (CREATE TABLE IF NOT EXISTS and friends);
// this runs on every startup before the service takes traffic.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool, ddl ...string) error {
	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return errors.Join(ErrFailedToApplySchema, err)
		}
	}
	return nil
}
