package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/dto"
	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/response"
)

type worklistService interface {
	Config() service.WorklistView
	List(ctx context.Context, sessionID, rawQuery string) (*models.WorklistPage, error)
	SetFilters(ctx context.Context, sessionID string, next models.FilterState) (*models.FilterUpdate, error)
	ChangePage(ctx context.Context, sessionID string, newPage int) (*models.FilterUpdate, error)
	SetResultsPerPage(ctx context.Context, sessionID string, resultsPerPage int) (*models.FilterUpdate, error)
	ClearFilters(ctx context.Context, sessionID string) (*models.FilterUpdate, error)
	EndSession(ctx context.Context, sessionID string) error
	ToggleRow(ctx context.Context, sessionID string, index int) (*models.RowExpansion, error)
	DrainNotifications(ctx context.Context, sessionID string) ([]models.Notification, error)
}

// WorklistHandler exposes the session-scoped study list.
type WorklistHandler struct {
	service worklistService
}

// NewWorklistHandler builds a new handler.
func NewWorklistHandler(service worklistService) *WorklistHandler {
	return &WorklistHandler{service: service}
}

// Config godoc
// @Summary Describe the worklist engine
// @Tags Worklist
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /worklist/config [get]
func (h *WorklistHandler) Config(c *gin.Context) {
	response.OK(c, h.service.Config())
}

// List godoc
// @Summary Render the current worklist page
// @Description Query parameters override the stored session filters key by key.
// @Tags Worklist
// @Produce json
// @Param X-Worklist-Session header string false "Session id"
// @Param patientname query string false "Patient name"
// @Param mrn query string false "Medical record number"
// @Param startdate query string false "Start date (YYYYMMDD)"
// @Param enddate query string false "End date (YYYYMMDD)"
// @Param description query string false "Study description"
// @Param modalities query string false "Comma separated modalities"
// @Param accession query string false "Accession number"
// @Param sortby query string false "Sort field"
// @Param sortdirection query string false "ascending | descending | none"
// @Param pagenumber query int false "Page number"
// @Param resultsperpage query int false "Rows per page"
// @Success 200 {object} response.Envelope
// @Router /worklist/studies [get]
func (h *WorklistHandler) List(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), sessionID, c.Request.URL.RawQuery)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, page)
}

// SetFilters godoc
// @Summary Replace the session filters
// @Tags Worklist
// @Accept json
// @Produce json
// @Param payload body models.FilterState true "Filter state"
// @Success 200 {object} response.Envelope
// @Router /worklist/filters [put]
func (h *WorklistHandler) SetFilters(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.FilterState
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter payload"))
		return
	}
	update, err := h.service.SetFilters(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, update)
}

// ClearFilters godoc
// @Summary Reset the session filters to defaults
// @Tags Worklist
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /worklist/filters [delete]
func (h *WorklistHandler) ClearFilters(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	update, err := h.service.ClearFilters(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, update)
}

// ChangePage godoc
// @Summary Move to another page
// @Tags Worklist
// @Accept json
// @Produce json
// @Param payload body dto.ChangePageRequest true "Target page"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /worklist/page [put]
func (h *WorklistHandler) ChangePage(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ChangePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page payload"))
		return
	}
	update, err := h.service.ChangePage(c.Request.Context(), sessionID, req.PageNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, update)
}

// SetResultsPerPage godoc
// @Summary Change the number of rows per page
// @Tags Worklist
// @Accept json
// @Produce json
// @Param payload body dto.ResultsPerPageRequest true "Rows per page"
// @Success 200 {object} response.Envelope
// @Router /worklist/results-per-page [put]
func (h *WorklistHandler) SetResultsPerPage(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ResultsPerPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid results per page payload"))
		return
	}
	update, err := h.service.SetResultsPerPage(c.Request.Context(), sessionID, req.ResultsPerPage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, update)
}

// ToggleRow godoc
// @Summary Expand or collapse a study row
// @Tags Worklist
// @Produce json
// @Param index path int true "Row index on the current page"
// @Success 200 {object} response.Envelope
// @Router /worklist/rows/{index}/toggle [post]
func (h *WorklistHandler) ToggleRow(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	index, err := intParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	expansion, err := h.service.ToggleRow(c.Request.Context(), sessionID, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, expansion)
}

// Notifications godoc
// @Summary Drain pending session notifications
// @Tags Worklist
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /worklist/notifications [get]
func (h *WorklistHandler) Notifications(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.DrainNotifications(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// EndSession godoc
// @Summary Discard the session and its stored filters
// @Tags Worklist
// @Success 204
// @Router /worklist/session [delete]
func (h *WorklistHandler) EndSession(c *gin.Context) {
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.EndSession(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
