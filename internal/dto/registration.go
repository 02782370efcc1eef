package dto

import (
	"time"

	"github.com/noah-isme/event-reg-api/internal/models"
)

// AttendeeRecord is one normalized attendee block, either from a spreadsheet
// row or an edit form. ID is set only on edits of an existing attendee.
// Subtotal is the sheet's own per-attendee figure when it parsed; writers fall
// back to recomputing it from the training lines when nil.
type AttendeeRecord struct {
	ID          string   `json:"id,omitempty"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Position    string   `json:"position"`
	Designation string   `json:"designation"`
	Country     string   `json:"country"`
	Trainings   []string `json:"trainings"`
	Subtotal    *float64 `json:"subtotal,omitempty"`
}

// RegistrationRecord is the normalized form shared by the spreadsheet import
// and the registration forms. For individual registrations the admin contact
// fields double as the sole attendee and Attendees stays empty; Trainings then
// holds that implicit attendee's selections.
type RegistrationRecord struct {
	SubmittedAt   time.Time               `json:"submitted_at"`
	Kind          models.RegistrationKind `json:"kind"`
	FirstName     string                  `json:"first_name"`
	LastName      string                  `json:"last_name"`
	Email         string                  `json:"email"`
	Company       string                  `json:"company"`
	TotalCost     *float64                `json:"total_cost,omitempty"`
	PaymentOption string                  `json:"payment_option"`
	PaymentStatus models.PaymentStatus    `json:"payment_status"`
	Notes         string                  `json:"notes"`
	InvoiceRef    *string                 `json:"invoice_ref,omitempty"`
	Trainings     []string                `json:"trainings"`
	Attendees     []AttendeeRecord        `json:"attendees,omitempty"`
}

// IsGroup reports whether the record carries an explicit attendee block list.
func (r RegistrationRecord) IsGroup() bool {
	return r.Kind == models.RegistrationKindGroup && len(r.Attendees) > 0
}

// SaveRegistrationRequest is the form payload for creating or replacing a
// registration through the API.
type SaveRegistrationRequest struct {
	Kind          models.RegistrationKind `json:"kind" validate:"required,oneof=INDIVIDUAL GROUP"`
	FirstName     string                  `json:"first_name" validate:"required"`
	LastName      string                  `json:"last_name"`
	Email         string                  `json:"email" validate:"omitempty,email"`
	Company       string                  `json:"company"`
	PaymentOption string                  `json:"payment_option"`
	PaymentStatus models.PaymentStatus    `json:"payment_status" validate:"omitempty,oneof=UNPAID PAID PARTIAL"`
	Notes         string                  `json:"notes"`
	InvoiceRef    *string                 `json:"invoice_ref"`
	Trainings     []string                `json:"trainings"`
	Attendees     []AttendeeRecord        `json:"attendees" validate:"dive"`
}

// Record converts the request into the shared normalized form.
func (r SaveRegistrationRequest) Record() RegistrationRecord {
	status := r.PaymentStatus
	if status == "" {
		status = models.PaymentStatusUnpaid
	}
	return RegistrationRecord{
		SubmittedAt:   time.Now().UTC(),
		Kind:          r.Kind,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Company:       r.Company,
		PaymentOption: r.PaymentOption,
		PaymentStatus: status,
		Notes:         r.Notes,
		InvoiceRef:    r.InvoiceRef,
		Trainings:     r.Trainings,
		Attendees:     r.Attendees,
	}
}

// WriteResult names which reconciliation steps completed for one registration
// write. A partial multi-step failure is reported through it instead of a bare
// error, so callers can see what state the store was left in.
type WriteResult struct {
	RegistrationID    string   `json:"registration_id"`
	AttendeesWritten  int      `json:"attendees_written"`
	ReferencesWritten int      `json:"references_written"`
	SkippedLines      []string `json:"skipped_lines,omitempty"`
}
