package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"rentwear-backend/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates missing tables and indexes. Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("DDL", "schema")
	_, err := db.ExecContext(ctx, schemaSQL)
	logger.DatabaseResult("DDL", 0, err)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
