package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nramdhani/student-tracker/internal/service"
	appErrors "github.com/nramdhani/student-tracker/pkg/errors"
	"github.com/nramdhani/student-tracker/pkg/export"
)

// WebHandler serves the HTML form surface. Every failed submit flashes a
// transient notice and redirects back to the originating form; a missing
// student always redirects to the roster.
type WebHandler struct {
	tracker *service.TrackerService
	logger  *zap.Logger
}

// NewWebHandler constructs WebHandler.
func NewWebHandler(tracker *service.TrackerService, logger *zap.Logger) *WebHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebHandler{tracker: tracker, logger: logger}
}

// Register attaches the web routes to the engine.
func (h *WebHandler) Register(r *gin.Engine) {
	r.GET("/", h.Index)
	r.GET("/students", h.ListStudents)
	r.GET("/students/export.csv", h.ExportRosterCSV)
	r.GET("/add_student", h.AddStudentForm)
	r.POST("/add_student", h.AddStudent)
	r.GET("/add_grade", h.AddGradeForm)
	r.POST("/add_grade", h.AddGrade)
	r.GET("/student/:roll_number", h.StudentDetails)
	r.GET("/student/:roll_number/report.pdf", h.ReportCardPDF)
	r.GET("/average/:roll_number", h.Average)
}

func (h *WebHandler) Index(c *gin.Context) {
	h.render(c, "index.html", gin.H{})
}

func (h *WebHandler) ListStudents(c *gin.Context) {
	students, err := h.tracker.ListStudents(c.Request.Context())
	if err != nil {
		h.flash(c, "error", appErrors.FromError(err).Message)
		h.render(c, "list_students.html", gin.H{})
		return
	}
	h.render(c, "list_students.html", gin.H{"Students": students})
}

func (h *WebHandler) AddStudentForm(c *gin.Context) {
	h.render(c, "add_student.html", gin.H{})
}

func (h *WebHandler) AddStudent(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	rollNumber := strings.TrimSpace(c.PostForm("roll_number"))
	if name == "" || rollNumber == "" {
		h.flash(c, "error", "Name and Roll Number are required.")
		c.Redirect(http.StatusSeeOther, "/add_student")
		return
	}

	if _, err := h.tracker.AddStudent(c.Request.Context(), service.AddStudentRequest{Name: name, RollNumber: rollNumber}); err != nil {
		h.flash(c, "error", appErrors.FromError(err).Message)
		c.Redirect(http.StatusSeeOther, "/add_student")
		return
	}

	h.flash(c, "success", "Student added successfully!")
	c.Redirect(http.StatusSeeOther, "/students")
}

func (h *WebHandler) AddGradeForm(c *gin.Context) {
	h.render(c, "add_grade.html", gin.H{})
}

func (h *WebHandler) AddGrade(c *gin.Context) {
	rollNumber := strings.TrimSpace(c.PostForm("roll_number"))
	subject := strings.TrimSpace(c.PostForm("subject"))
	rawGrade := strings.TrimSpace(c.PostForm("grade"))
	if rollNumber == "" || subject == "" || rawGrade == "" {
		h.flash(c, "error", "All fields are required.")
		c.Redirect(http.StatusSeeOther, "/add_grade")
		return
	}

	grade, err := strconv.ParseFloat(rawGrade, 64)
	if err != nil {
		h.flash(c, "error", "Grade must be a number.")
		c.Redirect(http.StatusSeeOther, "/add_grade")
		return
	}

	_, err = h.tracker.RecordGrade(c.Request.Context(), service.RecordGradeRequest{
		RollNumber: rollNumber,
		Subject:    subject,
		Grade:      grade,
	})
	if err != nil {
		h.flash(c, "error", appErrors.FromError(err).Message)
		if appErrors.IsNotFound(err) {
			c.Redirect(http.StatusSeeOther, "/students")
			return
		}
		c.Redirect(http.StatusSeeOther, "/add_grade")
		return
	}

	h.flash(c, "success", "Grade added successfully!")
	c.Redirect(http.StatusSeeOther, "/student/"+url.PathEscape(rollNumber))
}

func (h *WebHandler) StudentDetails(c *gin.Context) {
	detail, err := h.tracker.StudentDetails(c.Request.Context(), c.Param("roll_number"))
	if err != nil {
		h.redirectToRoster(c, err)
		return
	}
	h.render(c, "view_student.html", gin.H{"Student": detail})
}

func (h *WebHandler) Average(c *gin.Context) {
	rollNumber := c.Param("roll_number")
	detail, err := h.tracker.StudentDetails(c.Request.Context(), rollNumber)
	if err != nil {
		h.redirectToRoster(c, err)
		return
	}
	h.render(c, "average.html", gin.H{"Student": detail})
}

func (h *WebHandler) ExportRosterCSV(c *gin.Context) {
	students, err := h.tracker.ListStudents(c.Request.Context())
	if err != nil {
		h.redirectToRoster(c, err)
		return
	}
	data, err := export.RosterCSV(students)
	if err != nil {
		h.redirectToRoster(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *WebHandler) ReportCardPDF(c *gin.Context) {
	detail, err := h.tracker.StudentDetails(c.Request.Context(), c.Param("roll_number"))
	if err != nil {
		h.redirectToRoster(c, err)
		return
	}
	data, err := export.ReportCardPDF(detail)
	if err != nil {
		h.redirectToRoster(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "report_"+detail.RollNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *WebHandler) redirectToRoster(c *gin.Context, err error) {
	if appErrors.IsNotFound(err) {
		h.flash(c, "error", "Student not found.")
	} else {
		h.logger.Error("web_request_failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		h.flash(c, "error", appErrors.FromError(err).Message)
	}
	c.Redirect(http.StatusSeeOther, "/students")
}

func (h *WebHandler) flash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	if err := session.Save(); err != nil {
		h.logger.Warn("flash_save_failed", zap.Error(err))
	}
}

// render merges pending flash notices into the template payload.
func (h *WebHandler) render(c *gin.Context, name string, data gin.H) {
	session := sessions.Default(c)
	errors := session.Flashes("error")
	successes := session.Flashes("success")
	if len(errors) > 0 || len(successes) > 0 {
		// Reading flashes mutates the session; persist the removal.
		if err := session.Save(); err != nil {
			h.logger.Warn("flash_save_failed", zap.Error(err))
		}
	}
	data["Errors"] = errors
	data["Successes"] = successes
	c.HTML(http.StatusOK, name, data)
}
