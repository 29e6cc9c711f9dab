package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nramdhani/student-tracker/internal/models"
)

func init() {
	// modernc.org/sqlite registers under "sqlite", which sqlx does not know
	// about. Queries below use "?" and are rebound per driver.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students with grade aggregates, ordered by roll number.
// The average column is unrounded; presentation rounding happens upstream.
func (r *StudentRepository) List(ctx context.Context) ([]models.StudentSummary, error) {
	const query = `SELECT s.roll_number, s.name, COUNT(g.id) AS grade_count, AVG(g.grade) AS average
        FROM students s
        LEFT JOIN grades g ON g.student_id = s.id
        GROUP BY s.id, s.roll_number, s.name
        ORDER BY s.roll_number ASC`
	var summaries []models.StudentSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return summaries, nil
}

// FindByRoll fetches a student by exact roll number. Returns sql.ErrNoRows
// when no student matches.
func (r *StudentRepository) FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error) {
	query := r.db.Rebind(`SELECT id, roll_number, name, created_at, updated_at FROM students WHERE roll_number = ?`)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, rollNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByRoll checks whether a roll number is already taken.
func (r *StudentRepository) ExistsByRoll(ctx context.Context, rollNumber string) (bool, error) {
	query := r.db.Rebind(`SELECT 1 FROM students WHERE roll_number = ? LIMIT 1`)
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return true, nil
}

// Create inserts a new student record with zero grades.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, roll_number, name, created_at, updated_at)
        VALUES (:id, :roll_number, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err stems from a unique constraint, in
// either the pq or the sqlite dialect. Used to map commit-time duplicate roll
// numbers back to a validation failure when the pre-check lost a race.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique index") ||
		strings.Contains(msg, "constraint failed")
}
