package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/event-reg-api/internal/dto"
	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/trainingline"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
)

type registrationRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Create(ctx context.Context, registration *models.Registration) error
	Update(ctx context.Context, registration *models.Registration) error
	Delete(ctx context.Context, id string) error
}

type attendeeRepository interface {
	Create(ctx context.Context, attendee *models.Attendee) error
	DeleteByRegistration(ctx context.Context, registrationID string) error
	ListByRegistration(ctx context.Context, registrationID string) ([]models.Attendee, error)
}

type referenceRemover interface {
	DeleteByRegistration(ctx context.Context, registrationID string) error
	ListDetailByRegistration(ctx context.Context, registrationID string) ([]models.TrainingReferenceDetail, error)
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// RegistrationView is the full read model for one registration.
type RegistrationView struct {
	models.RegistrationDetail
	References []models.TrainingReferenceDetail `json:"references"`
}

// RegistrationService orchestrates registration reads and the
// multi-table reconciliation performed on every write.
type RegistrationService struct {
	repo      registrationRepository
	attendees attendeeRepository
	refs      referenceRemover
	strategy  ReferenceStrategy
	catalog   catalogInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(repo registrationRepository, attendees attendeeRepository, refs referenceRemover, strategy ReferenceStrategy, catalog catalogInvalidator, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{repo: repo, attendees: attendees, refs: refs, strategy: strategy, catalog: catalog, validator: validate, logger: logger}
}

// List returns registrations with pagination metadata.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	registrations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return registrations, pagination, nil
}

// Get loads one registration with its attendees and training references.
func (s *RegistrationService) Get(ctx context.Context, id string) (*RegistrationView, error) {
	registration, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	attendees, err := s.attendees.ListByRegistration(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendees")
	}
	references, err := s.refs.ListDetailByRegistration(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training references")
	}
	view := &RegistrationView{
		RegistrationDetail: models.RegistrationDetail{Registration: *registration, Attendees: attendees},
		References:         references,
	}
	return view, nil
}

// Create validates the form payload and writes a new registration.
func (s *RegistrationService) Create(ctx context.Context, req dto.SaveRegistrationRequest) (*dto.WriteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	return s.CreateFromRecord(ctx, req.Record())
}

// CreateFromRecord writes a registration from the normalized form, shared
// with the spreadsheet importer.
func (s *RegistrationService) CreateFromRecord(ctx context.Context, record dto.RegistrationRecord) (*dto.WriteResult, error) {
	registration := s.toModel(record, nil)
	if err := s.repo.Create(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	result, err := s.writeChildren(ctx, registration.ID, record)
	if err != nil {
		return result, err
	}
	s.invalidateCatalog(ctx)
	return result, nil
}

// Replace rewrites a registration in full: attendees and training
// references are rebuilt from the payload, never merged.
func (s *RegistrationService) Replace(ctx context.Context, id string, req dto.SaveRegistrationRequest) (*dto.WriteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	record := req.Record()
	record.SubmittedAt = existing.SubmittedAt

	if err := s.deleteChildren(ctx, id); err != nil {
		return nil, err
	}

	registration := s.toModel(record, existing)
	if err := s.repo.Update(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update registration")
	}

	result, err := s.writeChildren(ctx, id, record)
	if err != nil {
		return result, err
	}
	s.invalidateCatalog(ctx)
	return result, nil
}

// Delete removes a registration and all of its children, children first
// so foreign keys never dangle.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if err := s.deleteChildren(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPartialWrite.Code, appErrors.ErrPartialWrite.Status, "children removed but registration delete failed")
	}
	return nil
}

func (s *RegistrationService) deleteChildren(ctx context.Context, id string) error {
	if err := s.refs.DeleteByRegistration(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete training references")
	}
	// The attendee delete outcome is checked on its own: references are
	// already gone at this point, so a swallowed failure here would leave
	// orphaned attendees behind a seemingly clean write.
	if err := s.attendees.DeleteByRegistration(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPartialWrite.Code, appErrors.ErrPartialWrite.Status, "references removed but attendee delete failed")
	}
	return nil
}

// writeChildren creates attendee rows and rebuilds training references.
// The returned WriteResult always reflects what was actually written,
// including on partial failure.
func (s *RegistrationService) writeChildren(ctx context.Context, registrationID string, record dto.RegistrationRecord) (*dto.WriteResult, error) {
	result := &dto.WriteResult{RegistrationID: registrationID}

	var sets []ReferenceSet
	if record.IsGroup() {
		for _, ar := range record.Attendees {
			subtotal := trainingline.Aggregate(ar.Trainings)
			if ar.Subtotal != nil {
				subtotal = *ar.Subtotal
			}
			attendee := &models.Attendee{
				ID:             ar.ID,
				RegistrationID: registrationID,
				FirstName:      ar.FirstName,
				LastName:       ar.LastName,
				Email:          ar.Email,
				Position:       ar.Position,
				Designation:    ar.Designation,
				Country:        ar.Country,
				Trainings:      pq.StringArray(ar.Trainings),
				Subtotal:       subtotal,
			}
			if err := s.attendees.Create(ctx, attendee); err != nil {
				return result, appErrors.Wrap(err, appErrors.ErrPartialWrite.Code, appErrors.ErrPartialWrite.Status, "registration written but attendee create failed")
			}
			result.AttendeesWritten++
			attendeeID := attendee.ID
			sets = append(sets, ReferenceSet{AttendeeID: &attendeeID, Lines: ar.Trainings})
		}
	} else {
		sets = append(sets, ReferenceSet{Lines: record.Trainings})
	}

	written, skipped, err := s.strategy.Sync(ctx, registrationID, sets)
	result.ReferencesWritten = written
	result.SkippedLines = skipped
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrPartialWrite.Code, appErrors.ErrPartialWrite.Status, "registration written but reference sync failed")
	}
	return result, nil
}

// toModel builds the registration row, computing the total from training
// selections when the source did not carry a parseable one.
func (s *RegistrationService) toModel(record dto.RegistrationRecord, existing *models.Registration) *models.Registration {
	total := record.TotalCost
	if total == nil {
		computed := s.computeTotal(record)
		total = &computed
	}
	submittedAt := record.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	registration := &models.Registration{
		SubmittedAt:   submittedAt,
		Kind:          record.Kind,
		FirstName:     record.FirstName,
		LastName:      record.LastName,
		Email:         record.Email,
		Company:       record.Company,
		TotalCost:     total,
		PaymentOption: record.PaymentOption,
		PaymentStatus: record.PaymentStatus,
		Notes:         record.Notes,
		InvoiceRef:    record.InvoiceRef,
	}
	if existing != nil {
		registration.ID = existing.ID
		registration.CreatedAt = existing.CreatedAt
	}
	return registration
}

// computeTotal mirrors writeChildren: sheet-provided subtotals win so the
// registration total always equals the sum of its stored attendee subtotals.
func (s *RegistrationService) computeTotal(record dto.RegistrationRecord) float64 {
	if record.IsGroup() {
		var total float64
		for _, ar := range record.Attendees {
			if ar.Subtotal != nil {
				total += *ar.Subtotal
				continue
			}
			total += trainingline.Aggregate(ar.Trainings)
		}
		return total
	}
	return trainingline.Aggregate(record.Trainings)
}

func (s *RegistrationService) invalidateCatalog(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}
