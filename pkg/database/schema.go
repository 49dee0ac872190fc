package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements are applied in order; each is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS studies (
		study_instance_uid TEXT PRIMARY KEY,
		accession TEXT NOT NULL DEFAULT '',
		modalities TEXT NOT NULL DEFAULT '',
		instances INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		mrn TEXT NOT NULL DEFAULT '',
		patient_name TEXT NOT NULL DEFAULT '',
		study_date TEXT NOT NULL DEFAULT '',
		study_time TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_studies_study_date ON studies (study_date DESC)`,
	`CREATE TABLE IF NOT EXISTS series (
		series_instance_uid TEXT PRIMARY KEY,
		study_instance_uid TEXT NOT NULL REFERENCES studies (study_instance_uid) ON DELETE CASCADE,
		series_number INTEGER NOT NULL DEFAULT 0,
		modality TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		series_date TEXT NOT NULL DEFAULT '',
		series_time TEXT NOT NULL DEFAULT '',
		num_instances INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_series_study ON series (study_instance_uid)`,
	`CREATE TABLE IF NOT EXISTS measurements (
		id UUID PRIMARY KEY,
		study_instance_uid TEXT NOT NULL,
		series_instance_uid TEXT NOT NULL DEFAULT '',
		tool_name TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		value DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurements_study ON measurements (study_instance_uid)`,
	`CREATE TABLE IF NOT EXISTS study_feedback (
		id UUID PRIMARY KEY,
		study_instance_uid TEXT NOT NULL,
		composition TEXT NOT NULL,
		birads_left TEXT NOT NULL,
		birads_right TEXT NOT NULL,
		detection_useful TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		submitted_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS display_set_feedback (
		id UUID PRIMARY KEY,
		display_set_instance_uid TEXT NOT NULL,
		density_correct TEXT NOT NULL,
		density_value TEXT NOT NULL DEFAULT '',
		birads_correct TEXT NOT NULL,
		birads_value TEXT NOT NULL DEFAULT '',
		annotation_correct TEXT NOT NULL,
		procedure_date TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		submitted_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the worklist tables when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return tx.Commit()
}
