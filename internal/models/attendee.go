package models

import "github.com/lib/pq"

// Attendee belongs to exactly one registration. Trainings holds the raw
// training-line selection strings; Subtotal is derived from them.
type Attendee struct {
	ID             string         `db:"id" json:"id"`
	RegistrationID string         `db:"registration_id" json:"registration_id"`
	FirstName      string         `db:"first_name" json:"first_name"`
	LastName       string         `db:"last_name" json:"last_name"`
	Email          string         `db:"email" json:"email"`
	Position       string         `db:"position" json:"position"`
	Designation    string         `db:"designation" json:"designation"`
	Country        string         `db:"country" json:"country"`
	Trainings      pq.StringArray `db:"trainings" json:"trainings"`
	Subtotal       float64        `db:"subtotal" json:"subtotal"`
}
