package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nramdhani/student-tracker/internal/models"
)

func TestRosterCSV(t *testing.T) {
	avg := 85.0
	data, err := RosterCSV([]models.StudentSummary{
		{RollNumber: "R1", Name: "Alice", GradeCount: 2, Average: &avg},
		{RollNumber: "R2", Name: "Bob"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "roll_number,name,grade_count,average", lines[0])
	assert.Equal(t, "R1,Alice,2,85.00", lines[1])
	assert.Equal(t, "R2,Bob,0,", lines[2])
}

func TestReportCardPDF(t *testing.T) {
	avg := 90.0
	data, err := ReportCardPDF(&models.StudentDetail{
		RollNumber: "R1",
		Name:       "Alice",
		Grades:     map[string]float64{"Math": 90},
		Average:    &avg,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestReportCardPDFNoGrades(t *testing.T) {
	data, err := ReportCardPDF(&models.StudentDetail{
		RollNumber: "R2",
		Name:       "Bob",
		Grades:     map[string]float64{},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
