// Package storage persists extraction results in a local SQLite database so
// reprocessing the same file is served from cache.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"invoicepipe/dto"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape. A mismatched
// database must be deleted and rebuilt from source documents.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store wraps the SQLite document cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database at path, creating it and its parent
// directory when absent.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// GetByHash returns the cached extraction result for a file hash, or nil
// when the document has never been processed.
func (s *Store) GetByHash(ctx context.Context, fileHash string) (*dto.ExtractionResult, error) {
	var rawJSON string
	row := s.db.QueryRowContext(ctx, `SELECT raw_json FROM documents WHERE file_hash = ?`, fileHash)
	if err := row.Scan(&rawJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document by hash: %w", err)
	}

	var result dto.ExtractionResult
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		return nil, fmt.Errorf("decode cached document: %w", err)
	}
	return &result, nil
}

// Save upserts the extraction result keyed by file hash. Line items are
// replaced wholesale so a reprocessed document never keeps stale rows.
func (s *Store) Save(ctx context.Context, fileName, rawText string, result *dto.ExtractionResult) error {
	if result == nil {
		return errors.New("result is nil")
	}

	rawJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inv := result.Invoice
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO documents (
            file_hash, file_name, raw_text, raw_json,
            invoice_number, invoice_date, vendor_name, currency_code,
            subtotal_cents, tax_cents, total_cents, discount_cents, processed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(file_hash) DO UPDATE SET
            file_name = excluded.file_name,
            raw_text = excluded.raw_text,
            raw_json = excluded.raw_json,
            invoice_number = excluded.invoice_number,
            invoice_date = excluded.invoice_date,
            vendor_name = excluded.vendor_name,
            currency_code = excluded.currency_code,
            subtotal_cents = excluded.subtotal_cents,
            tax_cents = excluded.tax_cents,
            total_cents = excluded.total_cents,
            discount_cents = excluded.discount_cents,
            processed_at = excluded.processed_at`,
		result.FileHash,
		nullableString(fileName),
		nullableString(rawText),
		string(rawJSON),
		nullableString(inv.InvoiceNumber),
		nullableString(inv.InvoiceDate),
		nullableString(inv.VendorName),
		nullableString(inv.CurrencyCode),
		nullableInt(inv.SubtotalCents),
		nullableInt(inv.TaxCents),
		nullableInt(inv.TotalCents),
		inv.DiscountCents,
		result.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	// LastInsertId is unreliable after an upsert that took the update arm,
	// so resolve the row id explicitly.
	var documentID int64
	row := tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE file_hash = ?`, result.FileHash)
	if err := row.Scan(&documentID); err != nil {
		return fmt.Errorf("resolve document id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear old items: %w", err)
	}
	for _, item := range result.Items {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO invoice_items (
                document_id, idx, description, qty, unit_price_cents, line_total_cents, category
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			documentID,
			item.Idx,
			item.Description,
			item.Qty,
			nullableInt(item.UnitPriceCents),
			item.LineTotalCents,
			nullableString(item.Category),
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", item.Idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

// ListVendorTotals aggregates spend per vendor across all cached documents.
func (s *Store) ListVendorTotals(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor_name, COALESCE(SUM(total_cents), 0)
         FROM documents WHERE vendor_name IS NOT NULL GROUP BY vendor_name`)
	if err != nil {
		return nil, fmt.Errorf("vendor totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var vendor string
		var total int64
		if err := rows.Scan(&vendor, &total); err != nil {
			return nil, err
		}
		totals[vendor] = total
	}
	return totals, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}
