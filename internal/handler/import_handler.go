package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-reg-api/internal/dto"
	appErrors "github.com/noah-isme/event-reg-api/pkg/errors"
	"github.com/noah-isme/event-reg-api/pkg/response"
)

type importService interface {
	ImportFromSheet(ctx context.Context, sheetName string) (*dto.ImportReport, error)
	ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportReport, error)
	EnqueueSheetImport(sheetName, actor string) (*dto.ImportJob, error)
	Job(id string) *dto.ImportJob
}

// ImportHandler exposes spreadsheet import endpoints.
type ImportHandler struct {
	imports importService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports importService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// ImportSheet godoc
// @Summary Import registrations from the configured Google spreadsheet
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body dto.SheetImportRequest false "Import options"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /imports/sheet [post]
func (h *ImportHandler) ImportSheet(c *gin.Context) {
	var req dto.SheetImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	if req.Async {
		actor := ""
		if claims := claimsFromContext(c); claims != nil {
			actor = claims.Email
		}
		job, err := h.imports.EnqueueSheetImport(req.SheetName, actor)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, job)
		return
	}

	report, err := h.imports.ImportFromSheet(c.Request.Context(), req.SheetName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ImportFile godoc
// @Summary Import registrations from an uploaded CSV file
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV export of the form responses"
// @Success 200 {object} response.Envelope
// @Router /imports/file [post]
func (h *ImportHandler) ImportFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file upload required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	report, err := h.imports.ImportCSV(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// JobStatus godoc
// @Summary Get the status of an asynchronous import
// @Tags Imports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /imports/{id} [get]
func (h *ImportHandler) JobStatus(c *gin.Context) {
	job := h.imports.Job(c.Param("id"))
	if job == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "import job not found"))
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
