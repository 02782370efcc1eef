package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-reg-api/internal/dto"
	"github.com/noah-isme/event-reg-api/internal/middleware"
	"github.com/noah-isme/event-reg-api/internal/models"
)

type importServiceMock struct {
	report    *dto.ImportReport
	importErr error
	job       *dto.ImportJob
	lastSheet string
	lastActor string
	synced    bool
	enqueued  bool
	csvRead   bool
}

func (m *importServiceMock) ImportFromSheet(ctx context.Context, sheetName string) (*dto.ImportReport, error) {
	m.synced = true
	m.lastSheet = sheetName
	return m.report, m.importErr
}

func (m *importServiceMock) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportReport, error) {
	m.csvRead = true
	_, _ = io.ReadAll(r)
	return m.report, m.importErr
}

func (m *importServiceMock) EnqueueSheetImport(sheetName, actor string) (*dto.ImportJob, error) {
	m.enqueued = true
	m.lastSheet = sheetName
	m.lastActor = actor
	return m.job, m.importErr
}

func (m *importServiceMock) Job(id string) *dto.ImportJob {
	if m.job != nil && m.job.ID == id {
		return m.job
	}
	return nil
}

func TestImportHandlerSheetSync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &importServiceMock{report: &dto.ImportReport{TotalRows: 2, Imported: 2}}
	handler := NewImportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := bytes.NewBufferString(`{"sheet_name":"Form Responses 1"}`)
	req, _ := http.NewRequest(http.MethodPost, "/imports/sheet", payload)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.ImportSheet(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.synced)
	assert.False(t, mockSvc.enqueued)
	assert.Equal(t, "Form Responses 1", mockSvc.lastSheet)
}

func TestImportHandlerSheetAsync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &importServiceMock{job: &dto.ImportJob{ID: "job-1", State: dto.ImportJobPending}}
	handler := NewImportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := bytes.NewBufferString(`{"async":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/imports/sheet", payload)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Email: "staff@example.com", Role: models.RoleAdmin})

	handler.ImportSheet(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, mockSvc.enqueued)
	assert.Equal(t, "staff@example.com", mockSvc.lastActor)
}

func TestImportHandlerFileUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &importServiceMock{report: &dto.ImportReport{TotalRows: 1, Imported: 1}}
	handler := NewImportHandler(mockSvc)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "responses.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Timestamp,First Name\n5/1/2024,Grace\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/imports/file", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req

	handler.ImportFile(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.csvRead)
}

func TestImportHandlerFileMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewImportHandler(&importServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/imports/file", nil)
	c.Request = req

	handler.ImportFile(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandlerJobStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &importServiceMock{job: &dto.ImportJob{ID: "job-1", State: dto.ImportJobCompleted}}
	handler := NewImportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/imports/job-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.JobStatus(c)
	require.Equal(t, http.StatusOK, w.Code)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	req2, _ := http.NewRequest(http.MethodGet, "/imports/unknown", nil)
	c2.Request = req2
	c2.Params = gin.Params{{Key: "id", Value: "unknown"}}

	handler.JobStatus(c2)
	require.Equal(t, http.StatusNotFound, w2.Code)
}
