package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/event-reg-api/internal/models"
)

// TrainingRepository handles persistence of the training catalog.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository constructs the repository.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// Resolve returns the ID of the training matching (name, date, price),
// creating it when absent. The upsert keeps concurrent imports from
// racing two inserts for the same training.
func (r *TrainingRepository) Resolve(ctx context.Context, training *models.Training) (string, error) {
	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	const query = `INSERT INTO trainings (id, name, date, price)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (name, date, price) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`
	var id string
	if err := r.db.GetContext(ctx, &id, query, training.ID, training.Name, training.Date, training.Price); err != nil {
		return "", fmt.Errorf("resolve training: %w", err)
	}
	training.ID = id
	return id, nil
}

// FindByID returns a training by its ID.
func (r *TrainingRepository) FindByID(ctx context.Context, id string) (*models.Training, error) {
	const query = `SELECT id, name, date, price FROM trainings WHERE id = $1`
	var training models.Training
	if err := r.db.GetContext(ctx, &training, query, id); err != nil {
		return nil, err
	}
	return &training, nil
}

// List returns the full training catalog ordered by date then name.
func (r *TrainingRepository) List(ctx context.Context) ([]models.Training, error) {
	const query = `SELECT id, name, date, price FROM trainings ORDER BY date, name`
	var trainings []models.Training
	if err := r.db.SelectContext(ctx, &trainings, query); err != nil {
		return nil, fmt.Errorf("list trainings: %w", err)
	}
	return trainings, nil
}

// DeleteAll purges the catalog, used before a full re-import.
func (r *TrainingRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trainings`); err != nil {
		return fmt.Errorf("purge trainings: %w", err)
	}
	return nil
}
