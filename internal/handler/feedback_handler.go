package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/response"
)

type feedbackService interface {
	SubmitStudyFeedback(ctx context.Context, studyInstanceUID, submittedBy string, feedback models.StudyFeedback) (*models.StudyFeedback, error)
	SubmitDisplaySetFeedback(ctx context.Context, displaySetUID, submittedBy string, feedback models.DisplaySetFeedback) (*models.DisplaySetFeedback, error)
	ListStudyFeedback(ctx context.Context, studyInstanceUID string) ([]models.StudyFeedback, error)
}

// FeedbackHandler records reader feedback.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler builds a new handler.
func NewFeedbackHandler(service feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// SubmitStudy godoc
// @Summary Submit study feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param uid path string true "Study instance UID"
// @Param payload body models.StudyFeedback true "Feedback form"
// @Success 201 {object} response.Envelope
// @Router /studies/{uid}/feedback [post]
func (h *FeedbackHandler) SubmitStudy(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.StudyFeedback
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}
	saved, err := h.service.SubmitStudyFeedback(c.Request.Context(), c.Param("uid"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// ListStudy godoc
// @Summary List study feedback
// @Tags Feedback
// @Produce json
// @Param uid path string true "Study instance UID"
// @Success 200 {object} response.Envelope
// @Router /studies/{uid}/feedback [get]
func (h *FeedbackHandler) ListStudy(c *gin.Context) {
	items, err := h.service.ListStudyFeedback(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// SubmitDisplaySet godoc
// @Summary Submit display set feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param uid path string true "Display set instance UID"
// @Param payload body models.DisplaySetFeedback true "Feedback form"
// @Success 201 {object} response.Envelope
// @Router /display-sets/{uid}/feedback [post]
func (h *FeedbackHandler) SubmitDisplaySet(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.DisplaySetFeedback
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}
	saved, err := h.service.SubmitDisplaySetFeedback(c.Request.Context(), c.Param("uid"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}
