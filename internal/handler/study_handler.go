package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/pkg/response"
)

type studyService interface {
	StudySeries(ctx context.Context, studyInstanceUID string) ([]models.SeriesRow, error)
	Launch(ctx context.Context, studyInstanceUID, rawQuery string) ([]models.ModeLaunch, error)
}

// StudyHandler serves per-study lookups that do not depend on a session.
type StudyHandler struct {
	service studyService
}

// NewStudyHandler builds a new handler.
func NewStudyHandler(service studyService) *StudyHandler {
	return &StudyHandler{service: service}
}

// Series godoc
// @Summary List the series of a study
// @Tags Studies
// @Produce json
// @Param uid path string true "Study instance UID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /studies/{uid}/series [get]
func (h *StudyHandler) Series(c *gin.Context) {
	rows, err := h.service.StudySeries(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Launch godoc
// @Summary Viewer links for a study
// @Description Preserved query parameters (configUrl and friends) are carried into the links.
// @Tags Studies
// @Produce json
// @Param uid path string true "Study instance UID"
// @Success 200 {object} response.Envelope
// @Router /studies/{uid}/launch [get]
func (h *StudyHandler) Launch(c *gin.Context) {
	modes, err := h.service.Launch(c.Request.Context(), c.Param("uid"), c.Request.URL.RawQuery)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, modes)
}
