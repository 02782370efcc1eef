package models

import "time"

// RegistrationKind distinguishes single-person submissions from group ones.
type RegistrationKind string

// Possible registration kinds.
const (
	RegistrationKindIndividual RegistrationKind = "INDIVIDUAL"
	RegistrationKindGroup      RegistrationKind = "GROUP"
)

// PaymentStatus tracks how much of a registration has been settled.
type PaymentStatus string

// Possible payment statuses.
const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
)

// Registration is one spreadsheet submission. For individual registrations the
// admin contact doubles as the sole attendee's identity.
type Registration struct {
	ID            string           `db:"id" json:"id"`
	SubmittedAt   time.Time        `db:"submitted_at" json:"submitted_at"`
	Kind          RegistrationKind `db:"kind" json:"kind"`
	FirstName     string           `db:"first_name" json:"first_name"`
	LastName      string           `db:"last_name" json:"last_name"`
	Email         string           `db:"email" json:"email"`
	Company       string           `db:"company" json:"company"`
	TotalCost     *float64         `db:"total_cost" json:"total_cost"`
	PaymentOption string           `db:"payment_option" json:"payment_option"`
	PaymentStatus PaymentStatus    `db:"payment_status" json:"payment_status"`
	Notes         string           `db:"notes" json:"notes"`
	InvoiceRef    *string          `db:"invoice_ref" json:"invoice_ref,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// RegistrationDetail bundles a registration with its attendees.
type RegistrationDetail struct {
	Registration
	Attendees []Attendee `json:"attendees"`
}

// RegistrationFilter narrows registration listings.
type RegistrationFilter struct {
	Kind          RegistrationKind
	PaymentStatus PaymentStatus
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
