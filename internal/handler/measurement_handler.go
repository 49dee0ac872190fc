package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/response"
)

type measurementUploader interface {
	Upload(ctx context.Context, upload models.MeasurementUpload) (*models.Notification, error)
}

// MeasurementHandler forwards measurements to the downstream service.
type MeasurementHandler struct {
	service measurementUploader
}

// NewMeasurementHandler builds a new handler.
func NewMeasurementHandler(service measurementUploader) *MeasurementHandler {
	return &MeasurementHandler{service: service}
}

// Upload godoc
// @Summary Send measurements to the measurement service
// @Description The outcome is reported as a notification; a downstream failure is not an HTTP error.
// @Tags Measurements
// @Accept json
// @Produce json
// @Param payload body models.MeasurementUpload true "Measurements"
// @Success 200 {object} response.Envelope
// @Router /measurements/upload [post]
func (h *MeasurementHandler) Upload(c *gin.Context) {
	var req models.MeasurementUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid measurement payload"))
		return
	}
	notification, err := h.service.Upload(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notification)
}
