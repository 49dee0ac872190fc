package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// SeriesRepository reads series metadata for expanded study rows.
type SeriesRepository struct {
	db *sqlx.DB
}

// NewSeriesRepository creates a new SeriesRepository.
func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// ListByStudy returns every series of the study in series number order.
func (r *SeriesRepository) ListByStudy(ctx context.Context, studyInstanceUID string) ([]models.Series, error) {
	const query = `SELECT series_instance_uid, study_instance_uid, series_number, modality, description, series_date, series_time, num_instances FROM series WHERE study_instance_uid = $1 ORDER BY series_number`
	var series []models.Series
	if err := r.db.SelectContext(ctx, &series, query, studyInstanceUID); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return series, nil
}
