package migrations

import (
	"github.com/triage-ai/triage-guard/pkg/infra/database"
	"gorm.io/gorm"
)

// Initial schema: api_keys for scoring-route auth, labeled_samples for the
// distillation pipeline's teacher verdict store.
func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250601_initial_schema",
		Name: "Create core tables: api_keys, labeled_samples",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE EXTENSION IF NOT EXISTS pgcrypto;
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS api_keys (
					id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name       TEXT NOT NULL,
					key        TEXT NOT NULL UNIQUE,
					active     BOOLEAN NOT NULL DEFAULT TRUE,
					expires_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_api_keys_key ON api_keys (key);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS labeled_samples (
					id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					dataset             TEXT NOT NULL,
					source_file         TEXT NOT NULL,
					sample_index        INTEGER NOT NULL,
					instruction         TEXT NOT NULL,
					history             TEXT NOT NULL DEFAULT '',
					current_action      TEXT NOT NULL DEFAULT '',
					env_info            TEXT NOT NULL DEFAULT '',
					ground_truth        DOUBLE PRECISION NOT NULL,
					teacher_malicious   TEXT,
					teacher_attacked    TEXT,
					teacher_harmfulness DOUBLE PRECISION,
					teacher_composite   DOUBLE PRECISION,
					teacher_raw         TEXT,
					parse_success       BOOLEAN NOT NULL DEFAULT FALSE,
					created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}

			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_labeled_samples_dataset ON labeled_samples (dataset);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP TABLE IF EXISTS labeled_samples;`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP TABLE IF EXISTS api_keys;`).Error
		},
	})
}
