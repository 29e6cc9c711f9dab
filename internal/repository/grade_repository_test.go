package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "subject", "grade", "created_at", "updated_at"}).
		AddRow("g1", "id-1", "Math", 90.0, now, now).
		AddRow("g2", "id-1", "Science", 75.0, now, now)
	mock.ExpectQuery("SELECT id, student_id, subject, grade, created_at, updated_at").
		WithArgs("id-1").
		WillReturnRows(rows)

	grades, err := repo.ListByStudent(context.Background(), "id-1")
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, "Math", grades[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertInserts(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, student_id, subject, grade, created_at, updated_at").
		WithArgs("id-1", "Math").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	grade, err := repo.UpsertBySubject(context.Background(), "id-1", "Math", 80)
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.Equal(t, "Math", grade.Subject)
	assert.Equal(t, 80.0, grade.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertUpdatesExisting(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	existing := sqlmock.NewRows([]string{"id", "student_id", "subject", "grade", "created_at", "updated_at"}).
		AddRow("g1", "id-1", "Math", 80.0, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, student_id, subject, grade, created_at, updated_at").
		WithArgs("id-1", "math").
		WillReturnRows(existing)
	mock.ExpectExec("UPDATE grades SET grade").
		WithArgs(90.0, sqlmock.AnyArg(), "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	grade, err := repo.UpsertBySubject(context.Background(), "id-1", "math", 90)
	require.NoError(t, err)
	// The stored subject keeps its original casing.
	assert.Equal(t, "Math", grade.Subject)
	assert.Equal(t, 90.0, grade.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, student_id, subject, grade, created_at, updated_at").
		WithArgs("id-1", "Math").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO grades").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.UpsertBySubject(context.Background(), "id-1", "Math", 80)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
