package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/bookofmonth/bookofmonth-api/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the pipeline tables and indexes when they are missing.
// It never alters existing tables.
func EnsureSchema(ctx context.Context, db store.DBTX) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
