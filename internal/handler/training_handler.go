package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-reg-api/internal/service"
	"github.com/noah-isme/event-reg-api/pkg/response"
)

// TrainingHandler exposes the training catalog.
type TrainingHandler struct {
	trainings *service.TrainingService
}

// NewTrainingHandler constructs TrainingHandler.
func NewTrainingHandler(trainings *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainings: trainings}
}

// List godoc
// @Summary List the training catalog
// @Tags Trainings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /trainings [get]
func (h *TrainingHandler) List(c *gin.Context) {
	trainings, cached, err := h.trainings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"cache": "miss"}
	if cached {
		meta["cache"] = "hit"
	}
	response.JSON(c, http.StatusOK, trainings, nil, meta)
}
