package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nramdhani/student-tracker/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	avg := 85.0
	rows := sqlmock.NewRows([]string{"roll_number", "name", "grade_count", "average"}).
		AddRow("R1", "Alice", 2, avg).
		AddRow("R2", "Bob", 0, nil)
	mock.ExpectQuery("SELECT s.roll_number, s.name, COUNT\\(g.id\\) AS grade_count, AVG\\(g.grade\\) AS average").
		WillReturnRows(rows)

	summaries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.NotNil(t, summaries[0].Average)
	assert.Equal(t, 85.0, *summaries[0].Average)
	assert.Nil(t, summaries[1].Average)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByRoll(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "roll_number", "name", "created_at", "updated_at"}).
		AddRow("id-1", "R1", "Alice", now, now)
	mock.ExpectQuery("SELECT id, roll_number, name, created_at, updated_at FROM students WHERE roll_number").
		WithArgs("R1").
		WillReturnRows(rows)

	student, err := repo.FindByRoll(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", student.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByRoll(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM students WHERE roll_number").
		WithArgs("R1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	exists, err := repo.ExistsByRoll(context.Background(), "R1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM students WHERE roll_number").
		WithArgs("R2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	exists, err = repo.ExistsByRoll(context.Background(), "R2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{RollNumber: "R1", Name: "Alice"}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "students_roll_number_key"`)))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: students.roll_number (2067)")))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
