package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nramdhani/student-tracker/internal/models"
)

// GradeRepository handles grade persistence. Grades are only reachable
// through their owning student.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByStudent returns all grades owned by a student, oldest first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	query := r.db.Rebind(`SELECT id, student_id, subject, grade, created_at, updated_at
        FROM grades WHERE student_id = ? ORDER BY created_at ASC`)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// UpsertBySubject records a grade in one transaction. A case-insensitive
// subject match updates the existing row in place, keeping the stored
// subject's original casing; otherwise a new row is inserted.
func (r *GradeRepository) UpsertBySubject(ctx context.Context, studentID, subject string, value float64) (*models.Grade, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin grade upsert: %w", err)
	}

	now := time.Now().UTC()
	findQuery := tx.Rebind(`SELECT id, student_id, subject, grade, created_at, updated_at
        FROM grades WHERE student_id = ? AND LOWER(subject) = LOWER(?)`)

	var grade models.Grade
	err = tx.GetContext(ctx, &grade, findQuery, studentID, subject)
	switch err {
	case nil:
		grade.Grade = value
		grade.UpdatedAt = now
		updateQuery := tx.Rebind(`UPDATE grades SET grade = ?, updated_at = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, updateQuery, grade.Grade, grade.UpdatedAt, grade.ID); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("update grade: %w", err)
		}
	case sql.ErrNoRows:
		grade = models.Grade{
			ID:        uuid.NewString(),
			StudentID: studentID,
			Subject:   subject,
			Grade:     value,
			CreatedAt: now,
			UpdatedAt: now,
		}
		const insertQuery = `INSERT INTO grades (id, student_id, subject, grade, created_at, updated_at)
            VALUES (:id, :student_id, :subject, :grade, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertQuery, grade); err != nil {
			tx.Rollback() //nolint:errcheck
			return nil, fmt.Errorf("insert grade: %w", err)
		}
	default:
		tx.Rollback() //nolint:errcheck
		return nil, fmt.Errorf("find grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit grade upsert: %w", err)
	}
	return &grade, nil
}
