package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema statements are written to run on both PostgreSQL and SQLite.
// Surrogate keys are uuid strings, so no dialect-specific autoincrement is
// needed. The unique index on LOWER(subject) enforces the one-grade-per-
// subject rule case-insensitively at commit time, and the students unique
// constraint stays authoritative for roll numbers under concurrent requests.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
        id TEXT PRIMARY KEY,
        roll_number TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS grades (
        id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
        subject TEXT NOT NULL,
        grade DOUBLE PRECISION NOT NULL,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_grades_student_subject
        ON grades (student_id, LOWER(subject))`,
}

// EnsureSchema creates the tracker tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
