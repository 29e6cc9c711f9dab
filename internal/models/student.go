package models

import "time"

// Student is a tracked learner. RollNumber is the business key and is unique
// across all students; the id is a persistence-layer surrogate.
type Student struct {
	ID         string    `db:"id" json:"id"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentSummary is a roster row with grade aggregates.
type StudentSummary struct {
	RollNumber string   `db:"roll_number" json:"roll_number"`
	Name       string   `db:"name" json:"name"`
	GradeCount int      `db:"grade_count" json:"grade_count"`
	Average    *float64 `db:"average" json:"average,omitempty"`
}

// StudentDetail is the full view of one student: grades keyed by subject (as
// stored, original casing) and the computed average. Average is nil when the
// student has no grades.
type StudentDetail struct {
	RollNumber string             `json:"roll_number"`
	Name       string             `json:"name"`
	Grades     map[string]float64 `json:"grades"`
	Average    *float64           `json:"average"`
}
