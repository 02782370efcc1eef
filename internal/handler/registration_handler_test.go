package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-reg-api/internal/dto"
	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/service"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
)

type registrationServiceMock struct {
	listResp   []models.Registration
	listErr    error
	getResp    *service.RegistrationView
	getErr     error
	createResp *dto.WriteResult
	createErr  error
	deleteErr  error
	lastFilter models.RegistrationFilter
	lastReq    dto.SaveRegistrationRequest
	created    bool
	replaced   bool
	deleted    bool
}

func (m *registrationServiceMock) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listResp)}, m.listErr
}

func (m *registrationServiceMock) Get(ctx context.Context, id string) (*service.RegistrationView, error) {
	return m.getResp, m.getErr
}

func (m *registrationServiceMock) Create(ctx context.Context, req dto.SaveRegistrationRequest) (*dto.WriteResult, error) {
	m.created = true
	m.lastReq = req
	return m.createResp, m.createErr
}

func (m *registrationServiceMock) Replace(ctx context.Context, id string, req dto.SaveRegistrationRequest) (*dto.WriteResult, error) {
	m.replaced = true
	m.lastReq = req
	return m.createResp, m.createErr
}

func (m *registrationServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = true
	return m.deleteErr
}

func TestRegistrationHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registrationServiceMock{
		listResp: []models.Registration{{ID: "reg-1"}},
	}
	handler := NewRegistrationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/registrations?kind=group&paymentStatus=paid&search=ada", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RegistrationKindGroup, mockSvc.lastFilter.Kind)
	assert.Equal(t, models.PaymentStatusPaid, mockSvc.lastFilter.PaymentStatus)
	assert.Equal(t, "ada", mockSvc.lastFilter.Search)
}

func TestRegistrationHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registrationServiceMock{
		createResp: &dto.WriteResult{RegistrationID: "reg-1", ReferencesWritten: 2},
	}
	handler := NewRegistrationHandler(mockSvc)

	payload, _ := json.Marshal(dto.SaveRegistrationRequest{
		Kind:      models.RegistrationKindIndividual,
		FirstName: "Grace",
		Trainings: []string{"May 1, 2024: Ethics in Practice ($150.00)"},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.created)
	assert.Equal(t, "Grace", mockSvc.lastReq.FirstName)
}

func TestRegistrationHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRegistrationHandler(&registrationServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/registrations", bytes.NewBufferString(`{"kind":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registrationServiceMock{getErr: appErrors.ErrNotFound}
	handler := NewRegistrationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/registrations/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistrationHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &registrationServiceMock{}
	handler := NewRegistrationHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/registrations/reg-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "reg-1"}}

	handler.Delete(c)
	// c.Status alone does not flush outside a full engine run.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.deleted)
}
