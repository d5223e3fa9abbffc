package database

import (
	"context"
	"fmt"

	txutil "bookshelf-api/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// BookDocumentsTable stores one JSONB document per book.
const BookDocumentsTable = "book_documents"

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS ` + BookDocumentsTable + ` (
		id  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		doc JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_book_documents_price
		ON ` + BookDocumentsTable + ` (((doc->>'price')::numeric))`,
	`CREATE INDEX IF NOT EXISTS idx_book_documents_name
		ON ` + BookDocumentsTable + ` ((lower(doc->>'name')))`,
}

// EnsureSchema creates the document table and its expression indexes if missing.
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	err := txutil.WithTransaction(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	log.Info().Str("table", BookDocumentsTable).Msg("[DATABASE] Schema ready")
	return nil
}

// PoolStats is a snapshot of the pool exposed by the health endpoint.
type PoolStats struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}

// Stats returns the current pool statistics, or a zero value before Connect.
func (db *PostgresDB) Stats() PoolStats {
	if db.Pool == nil {
		return PoolStats{}
	}

	s := db.Pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}
}
