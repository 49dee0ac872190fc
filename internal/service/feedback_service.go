package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

type feedbackStore interface {
	CreateStudyFeedback(ctx context.Context, feedback *models.StudyFeedback) error
	CreateDisplaySetFeedback(ctx context.Context, feedback *models.DisplaySetFeedback) error
	ListStudyFeedback(ctx context.Context, studyInstanceUID string) ([]models.StudyFeedback, error)
}

// FeedbackService records radiologist feedback on studies and display sets.
type FeedbackService struct {
	repo      feedbackStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(repo feedbackStore, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, validator: validate, logger: logger}
}

// SubmitStudyFeedback validates and stores the study form.
func (s *FeedbackService) SubmitStudyFeedback(ctx context.Context, studyInstanceUID, submittedBy string, feedback models.StudyFeedback) (*models.StudyFeedback, error) {
	if strings.TrimSpace(studyInstanceUID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "study instance uid is required")
	}
	feedback.StudyInstanceUID = studyInstanceUID
	feedback.SubmittedBy = submittedBy
	feedback.Note = strings.TrimSpace(feedback.Note)
	if err := s.validator.Struct(feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study feedback")
	}

	if err := s.repo.CreateStudyFeedback(ctx, &feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save study feedback")
	}
	s.logger.Info("study feedback recorded", zap.String("study_instance_uid", studyInstanceUID), zap.String("id", feedback.ID))
	return &feedback, nil
}

// SubmitDisplaySetFeedback validates and stores the display set form. A "no" answer must carry
// the corrected value.
func (s *FeedbackService) SubmitDisplaySetFeedback(ctx context.Context, displaySetUID, submittedBy string, feedback models.DisplaySetFeedback) (*models.DisplaySetFeedback, error) {
	if strings.TrimSpace(displaySetUID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "display set instance uid is required")
	}
	feedback.DisplaySetInstanceUID = displaySetUID
	feedback.SubmittedBy = submittedBy
	feedback.Note = strings.TrimSpace(feedback.Note)
	if err := s.validator.Struct(feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid display set feedback")
	}
	if feedback.DensityCorrect == "no" && feedback.DensityValue == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "density value is required when density is marked incorrect")
	}
	if feedback.BiradsCorrect == "no" && feedback.BiradsValue == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "birads value is required when birads is marked incorrect")
	}

	if err := s.repo.CreateDisplaySetFeedback(ctx, &feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save display set feedback")
	}
	s.logger.Info("display set feedback recorded", zap.String("display_set_instance_uid", displaySetUID), zap.String("id", feedback.ID))
	return &feedback, nil
}

// ListStudyFeedback returns the feedback recorded for a study, newest first.
func (s *FeedbackService) ListStudyFeedback(ctx context.Context, studyInstanceUID string) ([]models.StudyFeedback, error) {
	items, err := s.repo.ListStudyFeedback(ctx, studyInstanceUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list study feedback")
	}
	if items == nil {
		items = []models.StudyFeedback{}
	}
	return items, nil
}
