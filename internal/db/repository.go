// Package db implements the persisted-store tier on PostgreSQL.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/schema"
)

const (
	schemaName = "mt_symbols"
	tableName  = "twse"
)

var qualifiedTable = fmt.Sprintf("%s.%s", schemaName, tableName)

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Repository handles reads and writes of the codes table.
type Repository struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool, log *zap.SugaredLogger) *Repository {
	return &Repository{pool: pool, log: log}
}

// EnsureProvisioned creates the schema and table when absent. Migrations
// normally do this at startup; this covers a write against a database the
// migrations could not reach at that point.
func (r *Repository) EnsureProvisioned(ctx context.Context) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)
	`, schemaName, tableName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking table existence: %w", err)
	}
	if exists {
		return nil
	}

	r.log.Warnw("codes table missing, provisioning", "schema", schemaName, "table", tableName)

	if _, err := r.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schemaName); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+qualifiedTable+` (
			sc VARCHAR(20) PRIMARY KEY,
			cn TEXT NOT NULL DEFAULT '',
			ca TEXT NOT NULL DEFAULT '',
			ic TEXT NOT NULL DEFAULT '',
			dl TEXT NOT NULL DEFAULT '',
			ma TEXT NOT NULL DEFAULT '',
			si TEXT NOT NULL DEFAULT '',
			cc TEXT NOT NULL DEFAULT '',
			no TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	return nil
}

// ReplaceCodes replaces the table contents with the given record set in one
// transaction. Returns the number of rows written. A refresh is always a full
// replace, never a merge with prior contents.
func (r *Repository) ReplaceCodes(ctx context.Context, records []schema.Record) (int64, error) {
	if err := r.EnsureProvisioned(ctx); err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM "+qualifiedTable); err != nil {
		return 0, fmt.Errorf("clearing table: %w", err)
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO `+qualifiedTable+` (sc, cn, ca, ic, dl, ma, si, cc, no)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			rec.Symbol, rec.Name, string(rec.Category), rec.ISINCode,
			rec.DateOfListing, rec.MarketType, rec.Industry, rec.CFICode, rec.Notes,
		)
	}

	br := tx.SendBatch(ctx, batch)
	var count int64
	for range records {
		ct, err := br.Exec()
		if err != nil {
			br.Close()
			return count, fmt.Errorf("inserting code: %w", err)
		}
		count += ct.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return count, fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return count, fmt.Errorf("committing replace: %w", err)
	}
	return count, nil
}

// CodesByCategory reads records matching the filter, ordered by symbol.
func (r *Repository) CodesByCategory(ctx context.Context, filter schema.Filter) ([]schema.Record, error) {
	query := "SELECT sc, cn, ca, ic, dl, ma, si, cc, no FROM " + qualifiedTable
	args := []any{}
	if category, ok := filter.Category(); ok {
		query += " WHERE ca = $1"
		args = append(args, string(category))
	}
	query += " ORDER BY sc"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying codes: %w", err)
	}
	defer rows.Close()

	var records []schema.Record
	for rows.Next() {
		var rec schema.Record
		var category string
		err := rows.Scan(
			&rec.Symbol, &rec.Name, &category, &rec.ISINCode,
			&rec.DateOfListing, &rec.MarketType, &rec.Industry, &rec.CFICode, &rec.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning code: %w", err)
		}
		rec.Category, err = schema.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", rec.Symbol, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CodeCount returns the number of persisted records.
func (r *Repository) CodeCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+qualifiedTable).Scan(&count)
	return count, err
}

// CountByCategory returns per-category record counts.
func (r *Repository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, "SELECT ca, COUNT(*) FROM "+qualifiedTable+" GROUP BY ca")
	if err != nil {
		return nil, fmt.Errorf("counting by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
