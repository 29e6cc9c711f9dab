package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/nramdhani/student-tracker/internal/models"
)

// RosterCSV renders the student roster as CSV. The average column is blank
// for students without grades.
func RosterCSV(summaries []models.StudentSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if err := writer.Write([]string{"roll_number", "name", "grade_count", "average"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range summaries {
		avg := ""
		if s.Average != nil {
			avg = strconv.FormatFloat(*s.Average, 'f', 2, 64)
		}
		record := []string{s.RollNumber, s.Name, strconv.Itoa(s.GradeCount), avg}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
