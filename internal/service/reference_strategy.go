package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/trainingline"
)

type trainingResolver interface {
	Resolve(ctx context.Context, training *models.Training) (string, error)
}

type referenceWriter interface {
	Insert(ctx context.Context, ref *models.TrainingReference) error
	DeleteByRegistration(ctx context.Context, registrationID string) error
}

// ReferenceSet groups the raw training selections belonging to one owner:
// the registration itself, or one of its attendees.
type ReferenceSet struct {
	AttendeeID *string
	Lines      []string
}

// ReferenceStrategy reconciles stored training references with the
// selections on an incoming registration write.
type ReferenceStrategy interface {
	Sync(ctx context.Context, registrationID string, sets []ReferenceSet) (written int, skipped []string, err error)
}

// FullReplaceStrategy drops every reference for the registration and
// rebuilds the set from scratch. Replacing wholesale keeps the stored
// references from drifting when selections are edited, at the cost of
// churning IDs on every write.
type FullReplaceStrategy struct {
	trainings trainingResolver
	refs      referenceWriter
}

// NewFullReplaceStrategy constructs the strategy.
func NewFullReplaceStrategy(trainings trainingResolver, refs referenceWriter) *FullReplaceStrategy {
	return &FullReplaceStrategy{trainings: trainings, refs: refs}
}

// Sync rebuilds the reference rows for one registration. Selections that
// do not decode as training lines, or whose catalog entry cannot be
// resolved, are skipped and reported, never written; the remaining lines
// still go through. Only the delete and insert steps can fail the sync.
func (s *FullReplaceStrategy) Sync(ctx context.Context, registrationID string, sets []ReferenceSet) (int, []string, error) {
	if err := s.refs.DeleteByRegistration(ctx, registrationID); err != nil {
		return 0, nil, fmt.Errorf("clear references: %w", err)
	}

	written := 0
	var skipped []string
	for _, set := range sets {
		for _, raw := range set.Lines {
			line, ok := trainingline.Decode(raw)
			if !ok {
				skipped = append(skipped, raw)
				continue
			}
			trainingID, err := s.trainings.Resolve(ctx, &models.Training{
				Name:  line.Name,
				Date:  line.Date,
				Price: line.Price,
			})
			if err != nil {
				skipped = append(skipped, raw)
				continue
			}
			ref := &models.TrainingReference{
				TrainingID:     trainingID,
				RegistrationID: registrationID,
				AttendeeID:     set.AttendeeID,
			}
			if err := s.refs.Insert(ctx, ref); err != nil {
				return written, skipped, err
			}
			written++
		}
	}
	return written, skipped, nil
}
