package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-reg-api/internal/models"
)

// TrainingReferenceRepository links registrations and attendees to
// catalog trainings.
type TrainingReferenceRepository struct {
	db *sqlx.DB
}

// NewTrainingReferenceRepository constructs the repository.
func NewTrainingReferenceRepository(db *sqlx.DB) *TrainingReferenceRepository {
	return &TrainingReferenceRepository{db: db}
}

// Insert persists a new training reference.
func (r *TrainingReferenceRepository) Insert(ctx context.Context, ref *models.TrainingReference) error {
	if ref.ID == "" {
		ref.ID = uuid.NewString()
	}
	const query = `INSERT INTO training_references (id, training_id, registration_id, attendee_id)
        VALUES (:id, :training_id, :registration_id, :attendee_id)`
	if _, err := r.db.NamedExecContext(ctx, query, ref); err != nil {
		return fmt.Errorf("create training reference: %w", err)
	}
	return nil
}

// DeleteByRegistration removes all references for a registration,
// including those of its attendees.
func (r *TrainingReferenceRepository) DeleteByRegistration(ctx context.Context, registrationID string) error {
	const query = `DELETE FROM training_references WHERE registration_id = $1`
	if _, err := r.db.ExecContext(ctx, query, registrationID); err != nil {
		return fmt.Errorf("delete registration references: %w", err)
	}
	return nil
}

// DeleteByAttendee removes all references tied to one attendee.
func (r *TrainingReferenceRepository) DeleteByAttendee(ctx context.Context, attendeeID string) error {
	const query = `DELETE FROM training_references WHERE attendee_id = $1`
	if _, err := r.db.ExecContext(ctx, query, attendeeID); err != nil {
		return fmt.Errorf("delete attendee references: %w", err)
	}
	return nil
}

// DeleteAll purges every reference, used before a full re-import.
func (r *TrainingReferenceRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM training_references`); err != nil {
		return fmt.Errorf("purge training references: %w", err)
	}
	return nil
}

// ListDetailByRegistration returns references joined with their trainings.
func (r *TrainingReferenceRepository) ListDetailByRegistration(ctx context.Context, registrationID string) ([]models.TrainingReferenceDetail, error) {
	const query = `SELECT tr.id, tr.training_id, tr.registration_id, tr.attendee_id,
        t.name AS training_name, t.date AS training_date, t.price AS training_price
        FROM training_references tr
        LEFT JOIN trainings t ON t.id = tr.training_id
        WHERE tr.registration_id = $1
        ORDER BY t.date, t.name`
	var refs []models.TrainingReferenceDetail
	if err := r.db.SelectContext(ctx, &refs, query, registrationID); err != nil {
		return nil, fmt.Errorf("list registration references: %w", err)
	}
	return refs, nil
}
