package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nramdhani/student-tracker/internal/models"
	"github.com/nramdhani/student-tracker/internal/repository"
	appErrors "github.com/nramdhani/student-tracker/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.StudentSummary, error)
	FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error)
	ExistsByRoll(ctx context.Context, rollNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type gradeRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
	UpsertBySubject(ctx context.Context, studentID, subject string, value float64) (*models.Grade, error)
}

// AddStudentRequest holds payload for registering a student.
type AddStudentRequest struct {
	Name       string `json:"name" form:"name"`
	RollNumber string `json:"roll_number" form:"roll_number"`
}

// RecordGradeRequest holds payload for recording one subject grade.
type RecordGradeRequest struct {
	RollNumber string  `json:"roll_number" form:"roll_number"`
	Subject    string  `json:"subject" form:"subject"`
	Grade      float64 `json:"grade" form:"grade" validate:"gte=0,lte=100"`
}

// TrackerService is the stateless façade over students and their grades.
// Each operation is one unit of work against the persistence layer.
type TrackerService struct {
	students studentRepository
	grades   gradeRepository

	validator *validator.Validate
	logger    *zap.Logger

	// cache is optional; when nil every average is computed from the store.
	cache    *redis.Client
	cacheTTL time.Duration

	metrics *MetricsService
}

// NewTrackerService constructs the tracker service.
func NewTrackerService(students studentRepository, grades gradeRepository, validate *validator.Validate, logger *zap.Logger) *TrackerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackerService{students: students, grades: grades, validator: validate, logger: logger}
}

// WithCache enables the Redis-backed average cache.
func (s *TrackerService) WithCache(client *redis.Client, ttl time.Duration) *TrackerService {
	s.cache = client
	s.cacheTTL = ttl
	return s
}

// WithMetrics wires domain counters.
func (s *TrackerService) WithMetrics(m *MetricsService) *TrackerService {
	s.metrics = m
	return s
}

// ListStudents returns the roster with rounded averages.
func (s *TrackerService) ListStudents(ctx context.Context) ([]models.StudentSummary, error) {
	summaries, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	for i := range summaries {
		if summaries[i].Average != nil {
			rounded := round2(*summaries[i].Average)
			summaries[i].Average = &rounded
		}
	}
	return summaries, nil
}

// AddStudent registers a new student with zero grades.
func (s *TrackerService) AddStudent(ctx context.Context, req AddStudentRequest) (*models.Student, error) {
	name := strings.TrimSpace(req.Name)
	rollNumber := strings.TrimSpace(req.RollNumber)
	if name == "" || rollNumber == "" {
		return nil, appErrors.Validation("Name and Roll Number are required.")
	}

	exists, err := s.students.ExistsByRoll(ctx, rollNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roll number")
	}
	if exists {
		return nil, appErrors.Validation(fmt.Sprintf("Roll number '%s' already exists.", rollNumber))
	}

	student := &models.Student{Name: name, RollNumber: rollNumber}
	if err := s.students.Create(ctx, student); err != nil {
		// The pre-check can lose a race; the unique constraint is the
		// source of truth and maps to the same validation failure.
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Validation(fmt.Sprintf("Roll number '%s' already exists.", rollNumber))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.metrics.IncStudentCreated()
	s.logger.Info("student_added", zap.String("roll_number", rollNumber))
	return student, nil
}

// RecordGrade upserts one subject grade for the student with the given roll
// number. Subjects match case-insensitively; an existing entry is updated in
// place.
func (s *TrackerService) RecordGrade(ctx context.Context, req RecordGradeRequest) (*models.Grade, error) {
	rollNumber := strings.TrimSpace(req.RollNumber)
	student, err := s.findStudent(ctx, rollNumber)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, appErrors.Validation("Subject cannot be empty.")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation("Grade must be between 0 and 100.")
	}

	grade, err := s.grades.UpsertBySubject(ctx, student.ID, subject, req.Grade)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	s.invalidateAverage(ctx, rollNumber)
	s.metrics.IncGradeRecorded()
	s.logger.Info("grade_recorded",
		zap.String("roll_number", rollNumber),
		zap.String("subject", grade.Subject),
		zap.Float64("grade", grade.Grade))
	return grade, nil
}

// StudentDetails returns one student with grades keyed by stored subject and
// the computed average.
func (s *TrackerService) StudentDetails(ctx context.Context, rollNumber string) (*models.StudentDetail, error) {
	student, err := s.findStudent(ctx, rollNumber)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	gradeMap := make(map[string]float64, len(grades))
	for _, g := range grades {
		gradeMap[g.Subject] = g.Grade
	}

	return &models.StudentDetail{
		RollNumber: student.RollNumber,
		Name:       student.Name,
		Grades:     gradeMap,
		Average:    averageOf(grades),
	}, nil
}

// Average returns the student's mean grade, nil when no grades exist.
func (s *TrackerService) Average(ctx context.Context, rollNumber string) (*float64, error) {
	student, err := s.findStudent(ctx, rollNumber)
	if err != nil {
		return nil, err
	}

	if avg, ok := s.cachedAverage(ctx, student.RollNumber); ok {
		return avg, nil
	}

	grades, err := s.grades.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	avg := averageOf(grades)
	s.storeAverage(ctx, student.RollNumber, avg)
	return avg, nil
}

func (s *TrackerService) findStudent(ctx context.Context, rollNumber string) (*models.Student, error) {
	student, err := s.students.FindByRoll(ctx, rollNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound(fmt.Sprintf("No student found with roll number %s.", rollNumber))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// averageOf computes the arithmetic mean rounded to 2 decimal places with
// round-half-to-even. An empty collection has no average.
func averageOf(grades []models.Grade) *float64 {
	if len(grades) == 0 {
		return nil
	}
	var total float64
	for _, g := range grades {
		total += g.Grade
	}
	avg := round2(total / float64(len(grades)))
	return &avg
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func averageKey(rollNumber string) string {
	return "tracker:avg:" + rollNumber
}

func (s *TrackerService) cachedAverage(ctx context.Context, rollNumber string) (*float64, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, averageKey(rollNumber)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("average_cache_get_failed", zap.Error(err))
		}
		return nil, false
	}
	avg, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &avg, true
}

func (s *TrackerService) storeAverage(ctx context.Context, rollNumber string, avg *float64) {
	// Undefined averages are never cached; a first grade must show up at once.
	if s.cache == nil || avg == nil {
		return
	}
	raw := strconv.FormatFloat(*avg, 'f', -1, 64)
	if err := s.cache.Set(ctx, averageKey(rollNumber), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("average_cache_set_failed", zap.Error(err))
	}
}

func (s *TrackerService) invalidateAverage(ctx context.Context, rollNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, averageKey(rollNumber)).Err(); err != nil {
		s.logger.Warn("average_cache_del_failed", zap.Error(err))
	}
}
