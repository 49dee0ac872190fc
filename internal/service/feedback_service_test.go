package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
)

type mockFeedbackRepo struct {
	study      []models.StudyFeedback
	displaySet []models.DisplaySetFeedback
}

func (m *mockFeedbackRepo) CreateStudyFeedback(ctx context.Context, feedback *models.StudyFeedback) error {
	feedback.ID = "fb-study"
	m.study = append(m.study, *feedback)
	return nil
}

func (m *mockFeedbackRepo) CreateDisplaySetFeedback(ctx context.Context, feedback *models.DisplaySetFeedback) error {
	feedback.ID = "fb-ds"
	m.displaySet = append(m.displaySet, *feedback)
	return nil
}

func (m *mockFeedbackRepo) ListStudyFeedback(ctx context.Context, studyInstanceUID string) ([]models.StudyFeedback, error) {
	return nil, nil
}

func TestSubmitStudyFeedback(t *testing.T) {
	repo := &mockFeedbackRepo{}
	svc := NewFeedbackService(repo, nil, nil)

	saved, err := svc.SubmitStudyFeedback(context.Background(), "1.2.3", "u-1", models.StudyFeedback{
		Composition:     "B",
		BiradsLeft:      "B1",
		BiradsRight:     "B2",
		DetectionUseful: "Evet",
		Note:            "  ok  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-study", saved.ID)
	assert.Equal(t, "1.2.3", saved.StudyInstanceUID)
	assert.Equal(t, "u-1", saved.SubmittedBy)
	assert.Equal(t, "ok", saved.Note)

	_, err = svc.SubmitStudyFeedback(context.Background(), "1.2.3", "u-1", models.StudyFeedback{Composition: "E"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.study, 1)
}

func TestSubmitDisplaySetFeedbackRequiresCorrection(t *testing.T) {
	repo := &mockFeedbackRepo{}
	svc := NewFeedbackService(repo, nil, nil)
	form := models.DisplaySetFeedback{
		DensityCorrect:    "no",
		BiradsCorrect:     "yes",
		AnnotationCorrect: "yes",
		ProcedureDate:     "2024-03-01",
	}

	_, err := svc.SubmitDisplaySetFeedback(context.Background(), "ds-1", "u-1", form)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	form.DensityValue = "C"
	saved, err := svc.SubmitDisplaySetFeedback(context.Background(), "ds-1", "u-1", form)
	require.NoError(t, err)
	assert.Equal(t, "ds-1", saved.DisplaySetInstanceUID)

	form.ProcedureDate = "01/03/2024"
	_, err = svc.SubmitDisplaySetFeedback(context.Background(), "ds-1", "u-1", form)
	assert.Error(t, err)
	assert.Len(t, repo.displaySet, 1)
}

func TestListStudyFeedbackNeverNil(t *testing.T) {
	svc := NewFeedbackService(&mockFeedbackRepo{}, nil, nil)

	items, err := svc.ListStudyFeedback(context.Background(), "1.2.3")
	require.NoError(t, err)
	assert.NotNil(t, items)
}
