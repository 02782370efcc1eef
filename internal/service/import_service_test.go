package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-reg-api/internal/dto"
	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/sheet"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
)

type mockSheetSource struct {
	rows [][]string
	err  error
}

func (m *mockSheetSource) ReadAll(ctx context.Context, sheetName string) ([][]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func sheetHeaders() []string {
	l := sheet.DefaultLayout()
	headers := make([]string, 13+2*l.BlockWidth)
	headers[0] = l.Timestamp.Header
	headers[1] = l.FirstName.Header
	headers[2] = l.LastName.Header
	headers[3] = l.Email.Header
	headers[4] = l.Kind.Header
	headers[5] = l.Company.Header
	headers[6] = l.Trainings.Header
	headers[7] = l.Total.Header
	headers[8] = l.PaymentOption.Header
	headers[9] = l.Notes.Header
	headers[10] = l.GroupTotal.Header
	headers[11] = l.GroupCompany.Header
	headers[12] = l.AttendeeCount.Header
	for i := 13; i < len(headers); i++ {
		headers[i] = "Attendee"
	}
	return headers
}

func individualRow() []string {
	return []string{
		"5/1/2024 09:30:00", "Grace", "Hopper", "grace@example.com", "Myself", "Navy",
		"May 1, 2024: Ethics in Practice ($150.00)", "$150.00", "Invoice", "",
		"", "", "",
	}
}

func groupRow() []string {
	return []string{
		"5/2/2024 10:15:00", "Ada", "Lovelace", "ada@example.com", "Someone Else / Group", "",
		"", "", "Credit Card", "",
		"$350.50", "Analytical Engines", "2",
		// attendee block 1
		"Betty", "Holberton", "betty@example.com", "Engineer", "Ms", "USA",
		"May 1, 2024: Ethics in Practice ($150.00)", "$150.00",
		// attendee block 2
		"Jean", "Bartik", "jean@example.com", "Engineer", "Ms", "USA",
		"May 2, 2024: Risk Management ($200.50)", "$200.50",
	}
}

func newImportServiceFixture(source sheetSource) (*ImportService, *mockRegistrationRepo, *mockAttendeeRepo, *mockReferenceRepo) {
	regs := &mockRegistrationRepo{}
	attendees := &mockAttendeeRepo{}
	refs := &mockReferenceRepo{}
	resolver := &mockTrainingResolver{}
	strategy := NewFullReplaceStrategy(resolver, refs)
	regSvc := NewRegistrationService(regs, attendees, refs, strategy, nil, nil, nil)

	normalizer := sheet.NewNormalizer(sheet.DefaultLayout())
	svc := NewImportService(source, normalizer, regSvc, refs, attendees, regs, nil, nil, "Form Responses 1", 0, nil)
	return svc, regs, attendees, refs
}

func TestImportServiceImportsMixedRows(t *testing.T) {
	source := &mockSheetSource{rows: [][]string{sheetHeaders(), individualRow(), groupRow()}}
	svc, regs, attendees, refs := newImportServiceFixture(source)

	report, err := svc.ImportFromSheet(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalRows)
	require.Equal(t, 2, report.Imported)
	assert.Zero(t, report.Failed)
	assert.False(t, report.Aborted)

	// Purge ran before the reload.
	assert.True(t, regs.purged)
	assert.True(t, attendees.purged)
	assert.True(t, refs.purged)

	require.Len(t, regs.registrations, 2)
	var group *models.Registration
	for _, reg := range regs.registrations {
		if reg.Kind == models.RegistrationKindGroup {
			r := reg
			group = &r
		}
	}
	require.NotNil(t, group)
	assert.Equal(t, "Analytical Engines", group.Company)
	require.NotNil(t, group.TotalCost)
	assert.InDelta(t, 350.50, *group.TotalCost, 0.001)

	list := attendees.byRegistration[group.ID]
	require.Len(t, list, 2)
	assert.InDelta(t, 150.00, list[0].Subtotal, 0.001)
	assert.InDelta(t, 200.50, list[1].Subtotal, 0.001)

	// One individual reference plus one per attendee.
	assert.Len(t, refs.refs, 3)
}

func TestImportServiceCollectsRowFailures(t *testing.T) {
	regs := &mockRegistrationRepo{}
	attendees := &mockAttendeeRepo{}
	refs := &mockReferenceRepo{}
	failing := &failingWriter{failOn: 2}
	normalizer := sheet.NewNormalizer(sheet.DefaultLayout())
	source := &mockSheetSource{rows: [][]string{sheetHeaders(), individualRow(), individualRow(), individualRow()}}
	svc := NewImportService(source, normalizer, failing, refs, attendees, regs, nil, nil, "Form Responses 1", 0, nil)

	report, err := svc.ImportFromSheet(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.Imported)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	// Row numbers count the header, so the second data row is row 3.
	assert.Equal(t, 3, report.Failures[0].RowNumber)
}

func TestImportServiceRejectsEmptySheet(t *testing.T) {
	source := &mockSheetSource{rows: nil}
	svc, regs, _, _ := newImportServiceFixture(source)

	_, err := svc.ImportFromSheet(context.Background(), "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	// Nothing was purged.
	assert.False(t, regs.purged)
}

func TestImportServiceRejectsHeaderOnlySheet(t *testing.T) {
	source := &mockSheetSource{rows: [][]string{sheetHeaders()}}
	svc, regs, attendees, refs := newImportServiceFixture(source)

	_, err := svc.ImportFromSheet(context.Background(), "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.False(t, regs.purged)
	assert.False(t, attendees.purged)
	assert.False(t, refs.purged)
}

func TestImportServiceBoundsEachRowWrite(t *testing.T) {
	writer := &deadlineWriter{}
	normalizer := sheet.NewNormalizer(sheet.DefaultLayout())
	source := &mockSheetSource{rows: [][]string{sheetHeaders(), individualRow()}}
	svc := NewImportService(source, normalizer, writer, &mockReferenceRepo{}, &mockAttendeeRepo{}, &mockRegistrationRepo{}, nil, nil, "Form Responses 1", 5*time.Second, nil)

	_, err := svc.ImportFromSheet(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, writer.sawDeadline)
}

func TestImportServiceAbortsOnCancel(t *testing.T) {
	source := &mockSheetSource{rows: [][]string{sheetHeaders(), individualRow(), individualRow()}}
	svc, _, _, _ := newImportServiceFixture(source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.ImportRows(ctx, source.rows)
	require.NoError(t, err)
	assert.True(t, report.Aborted)
	assert.Zero(t, report.Imported)
}

func TestImportServiceImportCSV(t *testing.T) {
	svc, regs, _, _ := newImportServiceFixture(nil)

	csv := strings.Join([]string{
		strings.Join(sheetHeaders()[:13], ","),
		`5/1/2024 09:30:00,Grace,Hopper,grace@example.com,Myself,Navy,"May 1, 2024: Ethics in Practice ($150.00)",$150.00,Invoice,,,,`,
	}, "\n")

	report, err := svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Len(t, regs.registrations, 1)
}

type deadlineWriter struct {
	sawDeadline bool
}

func (d *deadlineWriter) CreateFromRecord(ctx context.Context, record dto.RegistrationRecord) (*dto.WriteResult, error) {
	_, d.sawDeadline = ctx.Deadline()
	return &dto.WriteResult{RegistrationID: "reg"}, nil
}

type failingWriter struct {
	calls  int
	failOn int
}

func (f *failingWriter) CreateFromRecord(ctx context.Context, record dto.RegistrationRecord) (*dto.WriteResult, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("write failed")
	}
	return &dto.WriteResult{RegistrationID: "reg"}, nil
}
