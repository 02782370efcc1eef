package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/event-reg-api/internal/models"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
	"github.com/noah-isme/event-reg-api/pkg/export"
	"github.com/noah-isme/event-reg-api/pkg/storage"
)

// ExportType selects which registrations land in the export.
type ExportType string

// ExportFormat selects the rendered file format.
type ExportFormat string

// Supported export types and formats.
const (
	ExportTypeIndividual ExportType = "individual"
	ExportTypeGroup      ExportType = "group"

	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type registrationLister interface {
	ListAll(ctx context.Context, kind models.RegistrationKind) ([]models.Registration, error)
}

type attendeeLister interface {
	ListByRegistration(ctx context.Context, registrationID string) ([]models.Attendee, error)
}

type referenceLister interface {
	ListDetailByRegistration(ctx context.Context, registrationID string) ([]models.TrainingReferenceDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportRequest is the payload for generating a download.
type ExportRequest struct {
	Type   ExportType   `json:"type" validate:"required,oneof=individual group"`
	Format ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ExportID     string       `json:"export_id"`
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	Rows         int          `json:"rows"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// ExportService builds registration datasets and persists rendered files
// behind signed download URLs.
type ExportService struct {
	registrations registrationLister
	attendees     attendeeLister
	refs          referenceLister
	storage       fileStorage
	csv           csvRenderer
	pdf           pdfRenderer
	signer        *storage.SignedURLSigner
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(registrations registrationLister, attendees attendeeLister, refs referenceLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		registrations: registrations,
		attendees:     attendees,
		refs:          refs,
		storage:       store,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		signer:        signer,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// Generate builds the requested dataset and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch req.Type {
	case ExportTypeGroup:
		dataset, title, err = s.buildGroupDataset(ctx)
	default:
		dataset, title, err = s.buildIndividualDataset(ctx)
	}
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch req.Format {
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("%s_%s.%s", req.Type, time.Now().UTC().Format("20060102_150405"), req.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		ExportID:     exportID,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       req.Format,
		Rows:         len(dataset.Rows),
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than the configured TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// buildIndividualDataset flattens individual registrations one row each.
func (s *ExportService) buildIndividualDataset(ctx context.Context) (export.Dataset, string, error) {
	registrations, err := s.registrations.ListAll(ctx, models.RegistrationKindIndividual)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}

	rows := make([]map[string]string, 0, len(registrations))
	for _, reg := range registrations {
		refs, err := s.refs.ListDetailByRegistration(ctx, reg.ID)
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training references")
		}
		rows = append(rows, map[string]string{
			"Submitted At":   reg.SubmittedAt.UTC().Format("2006-01-02 15:04"),
			"First Name":     reg.FirstName,
			"Last Name":      reg.LastName,
			"Email":          reg.Email,
			"Company":        reg.Company,
			"Trainings":      joinTrainings(refs, nil),
			"Total Cost":     formatCost(reg.TotalCost),
			"Payment Option": reg.PaymentOption,
			"Payment Status": string(reg.PaymentStatus),
			"Notes":          reg.Notes,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Submitted At", "First Name", "Last Name", "Email", "Company",
			"Trainings", "Total Cost", "Payment Option", "Payment Status", "Notes"},
		Rows: rows,
	}
	return dataset, "Individual Registrations", nil
}

// buildGroupDataset emits one row per attendee, repeating the group contact.
func (s *ExportService) buildGroupDataset(ctx context.Context) (export.Dataset, string, error) {
	registrations, err := s.registrations.ListAll(ctx, models.RegistrationKindGroup)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}

	var rows []map[string]string
	for _, reg := range registrations {
		attendees, err := s.attendees.ListByRegistration(ctx, reg.ID)
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendees")
		}
		refs, err := s.refs.ListDetailByRegistration(ctx, reg.ID)
		if err != nil {
			return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training references")
		}
		contact := strings.TrimSpace(reg.FirstName + " " + reg.LastName)
		for _, attendee := range attendees {
			rows = append(rows, map[string]string{
				"Submitted At": reg.SubmittedAt.UTC().Format("2006-01-02 15:04"),
				"Contact":      contact,
				"Company":      reg.Company,
				"First Name":   attendee.FirstName,
				"Last Name":    attendee.LastName,
				"Email":        attendee.Email,
				"Position":     attendee.Position,
				"Designation":  attendee.Designation,
				"Country":      attendee.Country,
				"Trainings":    joinTrainings(refs, &attendee.ID),
				"Subtotal":     fmt.Sprintf("%.2f", attendee.Subtotal),
			})
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Submitted At", "Contact", "Company", "First Name", "Last Name",
			"Email", "Position", "Designation", "Country", "Trainings", "Subtotal"},
		Rows: rows,
	}
	return dataset, "Group Registrations", nil
}

// joinTrainings renders the references owned by one attendee (or by the
// registration itself when attendeeID is nil) as "Name (Date)" pairs.
func joinTrainings(refs []models.TrainingReferenceDetail, attendeeID *string) string {
	var parts []string
	for _, ref := range refs {
		switch {
		case attendeeID == nil && ref.AttendeeID != nil:
			continue
		case attendeeID != nil && (ref.AttendeeID == nil || *ref.AttendeeID != *attendeeID):
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", ref.TrainingName, ref.TrainingDate))
	}
	return strings.Join(parts, ", ")
}

func formatCost(cost *float64) string {
	if cost == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *cost)
}
