package export

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/nramdhani/student-tracker/internal/models"
)

// ReportCardPDF renders one student's grades and average as a simple PDF.
func ReportCardPDF(detail *models.StudentDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "REPORT CARD", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Name: %s", detail.Name), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Roll Number: %s", detail.RollNumber), "", 1, "", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 8, "Subject", "1", 0, "", false, 0, "")
	pdf.CellFormat(70, 8, "Grade", "1", 1, "C", false, 0, "")

	subjects := make([]string, 0, len(detail.Grades))
	for subject := range detail.Grades {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	pdf.SetFont("Arial", "", 10)
	for _, subject := range subjects {
		pdf.CellFormat(120, 7, subject, "1", 0, "", false, 0, "")
		pdf.CellFormat(70, 7, strconv.FormatFloat(detail.Grades[subject], 'f', 2, 64), "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	if detail.Average != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("Average: %.2f", *detail.Average), "", 1, "", false, 0, "")
	} else {
		pdf.CellFormat(0, 8, "Average: no grades recorded yet", "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
