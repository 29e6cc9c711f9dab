package models

import "time"

// Grade is one subject score owned by exactly one student. It is never
// addressed outside its student; deleting the student cascades to its grades.
type Grade struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Subject   string    `db:"subject" json:"subject"`
	Grade     float64   `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
