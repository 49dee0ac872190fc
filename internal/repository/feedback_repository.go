package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// FeedbackRepository persists radiologist feedback forms.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// CreateStudyFeedback inserts a study level feedback form.
func (r *FeedbackRepository) CreateStudyFeedback(ctx context.Context, feedback *models.StudyFeedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO study_feedback (id, study_instance_uid, composition, birads_left, birads_right, detection_useful, note, submitted_by, created_at) VALUES (:id, :study_instance_uid, :composition, :birads_left, :birads_right, :detection_useful, :note, :submitted_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, feedback); err != nil {
		return fmt.Errorf("create study feedback: %w", err)
	}
	return nil
}

// CreateDisplaySetFeedback inserts a display set review.
func (r *FeedbackRepository) CreateDisplaySetFeedback(ctx context.Context, feedback *models.DisplaySetFeedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO display_set_feedback (id, display_set_instance_uid, density_correct, density_value, birads_correct, birads_value, annotation_correct, procedure_date, note, submitted_by, created_at) VALUES (:id, :display_set_instance_uid, :density_correct, :density_value, :birads_correct, :birads_value, :annotation_correct, :procedure_date, :note, :submitted_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, feedback); err != nil {
		return fmt.Errorf("create display set feedback: %w", err)
	}
	return nil
}

// ListStudyFeedback returns the feedback submitted for a study, newest first.
func (r *FeedbackRepository) ListStudyFeedback(ctx context.Context, studyInstanceUID string) ([]models.StudyFeedback, error) {
	const query = `SELECT id, study_instance_uid, composition, birads_left, birads_right, detection_useful, note, submitted_by, created_at FROM study_feedback WHERE study_instance_uid = $1 ORDER BY created_at DESC`
	var items []models.StudyFeedback
	if err := r.db.SelectContext(ctx, &items, query, studyInstanceUID); err != nil {
		return nil, fmt.Errorf("list study feedback: %w", err)
	}
	return items, nil
}
