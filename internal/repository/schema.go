package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the payment store. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		payee_first_name TEXT NOT NULL,
		payee_last_name TEXT NOT NULL,
		payee_payment_status TEXT NOT NULL,
		payee_added_date_utc TIMESTAMPTZ NOT NULL,
		payee_due_date TIMESTAMPTZ,
		payee_address_line_1 TEXT NOT NULL,
		payee_address_line_2 TEXT NOT NULL DEFAULT '',
		payee_city TEXT NOT NULL,
		payee_country CHAR(2) NOT NULL,
		payee_province_or_state TEXT NOT NULL DEFAULT '',
		payee_postal_code TEXT NOT NULL,
		payee_phone_number TEXT NOT NULL,
		payee_email TEXT NOT NULL,
		currency CHAR(3) NOT NULL,
		discount_percent NUMERIC(5, 2),
		tax_percent NUMERIC(5, 2),
		due_amount NUMERIC(18, 2) NOT NULL,
		total_due NUMERIC(18, 2) NOT NULL,
		search_vector TSVECTOR GENERATED ALWAYS AS (
			to_tsvector('simple',
				payee_first_name || ' ' || payee_last_name || ' ' || payee_email || ' ' ||
				payee_address_line_1 || ' ' || payee_address_line_2 || ' ' || payee_city || ' ' ||
				payee_country || ' ' || payee_province_or_state)
		) STORED
	)`,
	`CREATE INDEX IF NOT EXISTS payment_status_index ON payments (payee_payment_status)`,
	`CREATE INDEX IF NOT EXISTS due_date_index ON payments (payee_due_date)`,
	`CREATE INDEX IF NOT EXISTS all_text_fields_index ON payments USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS status_due_date_index ON payments (payee_payment_status, payee_due_date)`,
	`CREATE TABLE IF NOT EXISTS evidence (
		id UUID PRIMARY KEY,
		payment_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		size BIGINT NOT NULL,
		content BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS evidence_payment_id_index ON evidence (payment_id)`,
	`CREATE TABLE IF NOT EXISTS import_log (
		file_name TEXT PRIMARY KEY,
		record_count INTEGER NOT NULL,
		imported_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the tables and indexes that do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewPostgresStore wires the sqlx-backed repositories.
func NewPostgresStore(db *sqlx.DB) *Store {
	return &Store{
		Payments:  NewPaymentRepository(db),
		Evidence:  NewEvidenceRepository(db),
		ImportLog: NewImportLogRepository(db),
		Ping: func(ctx context.Context) error {
			return db.PingContext(ctx)
		},
		EnsureSchema: func(ctx context.Context) error {
			return EnsureSchema(ctx, db)
		},
		Close: func(context.Context) error {
			return db.Close()
		},
	}
}
