package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nramdhani/student-tracker/internal/service"
	appErrors "github.com/nramdhani/student-tracker/pkg/errors"
	"github.com/nramdhani/student-tracker/pkg/response"
)

// TrackerHandler exposes the JSON API over the tracker service.
type TrackerHandler struct {
	tracker *service.TrackerService
}

// NewTrackerHandler constructs TrackerHandler.
func NewTrackerHandler(tracker *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{tracker: tracker}
}

// Register attaches the API routes to the group.
func (h *TrackerHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/students", h.List)
	rg.POST("/students", h.Create)
	rg.GET("/students/:roll_number", h.Get)
	rg.PUT("/students/:roll_number/grades", h.RecordGrade)
	rg.GET("/students/:roll_number/average", h.Average)
}

// List returns the roster with grade aggregates.
func (h *TrackerHandler) List(c *gin.Context) {
	students, err := h.tracker.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Create registers a new student.
func (h *TrackerHandler) Create(c *gin.Context) {
	var req service.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.tracker.AddStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Get returns one student with grades and average.
func (h *TrackerHandler) Get(c *gin.Context) {
	detail, err := h.tracker.StudentDetails(c.Request.Context(), c.Param("roll_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// RecordGrade upserts one subject grade for a student.
func (h *TrackerHandler) RecordGrade(c *gin.Context) {
	var req service.RecordGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.RollNumber = c.Param("roll_number")
	grade, err := h.tracker.RecordGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade)
}

// Average returns the computed mean grade; data is null for an empty
// grade collection.
func (h *TrackerHandler) Average(c *gin.Context) {
	avg, err := h.tracker.Average(c.Request.Context(), c.Param("roll_number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"roll_number": c.Param("roll_number"), "average": avg})
}
