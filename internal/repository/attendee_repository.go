package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-reg-api/internal/models"
)

// AttendeeRepository handles persistence of group attendees.
type AttendeeRepository struct {
	db *sqlx.DB
}

// NewAttendeeRepository constructs the repository.
func NewAttendeeRepository(db *sqlx.DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// Create persists a new attendee record.
func (r *AttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	if attendee.ID == "" {
		attendee.ID = uuid.NewString()
	}
	const query = `INSERT INTO attendees (id, registration_id, first_name, last_name, email, position,
        designation, country, trainings, subtotal)
        VALUES (:id, :registration_id, :first_name, :last_name, :email, :position,
        :designation, :country, :trainings, :subtotal)`
	if _, err := r.db.NamedExecContext(ctx, query, attendee); err != nil {
		return fmt.Errorf("create attendee: %w", err)
	}
	return nil
}

// Update rewrites all mutable attendee columns.
func (r *AttendeeRepository) Update(ctx context.Context, attendee *models.Attendee) error {
	const query = `UPDATE attendees SET first_name = :first_name, last_name = :last_name, email = :email,
        position = :position, designation = :designation, country = :country,
        trainings = :trainings, subtotal = :subtotal
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, attendee); err != nil {
		return fmt.Errorf("update attendee: %w", err)
	}
	return nil
}

// Delete removes an attendee by ID.
func (r *AttendeeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM attendees WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

// DeleteByRegistration removes every attendee belonging to a registration.
func (r *AttendeeRepository) DeleteByRegistration(ctx context.Context, registrationID string) error {
	const query = `DELETE FROM attendees WHERE registration_id = $1`
	if _, err := r.db.ExecContext(ctx, query, registrationID); err != nil {
		return fmt.Errorf("delete registration attendees: %w", err)
	}
	return nil
}

// DeleteAll purges every attendee, used before a full re-import.
func (r *AttendeeRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendees`); err != nil {
		return fmt.Errorf("purge attendees: %w", err)
	}
	return nil
}

// ListByRegistration returns attendees for a registration in a stable order.
func (r *AttendeeRepository) ListByRegistration(ctx context.Context, registrationID string) ([]models.Attendee, error) {
	const query = `SELECT id, registration_id, first_name, last_name, email, position, designation,
        country, trainings, subtotal
        FROM attendees WHERE registration_id = $1 ORDER BY id`
	var attendees []models.Attendee
	if err := r.db.SelectContext(ctx, &attendees, query, registrationID); err != nil {
		return nil, fmt.Errorf("list registration attendees: %w", err)
	}
	return attendees, nil
}
