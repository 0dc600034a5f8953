package gorm

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate. dims is the
// pgvector dimension for topic embeddings and must match the embedding
// client's configuration.
func runMigrations(db *gorm.DB, dims int) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: concepts and topics tables on pgvector.
		{
			ID: "001_concepts_topics",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&Concept{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&Topic{}); err != nil {
					return err
				}
				// AutoMigrate creates an untyped vector column; pin the
				// dimension so inserts with the wrong size fail loudly.
				return tx.Exec(fmt.Sprintf(
					"ALTER TABLE topics ALTER COLUMN embedding TYPE vector(%d)", dims)).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("concepts", "topics")
			},
		},

		// Migration 002: partial index for the pending-concept scan.
		// topic_id IS NULL rows are the hot path of every run.
		{
			ID: "002_pending_partial_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_concepts_unassigned
					ON concepts (location_id, created_at)
					WHERE topic_id IS NULL`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_concepts_unassigned`).Error
			},
		},
	})

	return m.Migrate()
}
