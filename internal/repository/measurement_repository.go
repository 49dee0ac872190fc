package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// MeasurementRepository stores measurements recorded against studies.
type MeasurementRepository struct {
	db *sqlx.DB
}

// NewMeasurementRepository creates a new MeasurementRepository.
func NewMeasurementRepository(db *sqlx.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

func measurementWhere(studyInstanceUID string, filter models.MeasurementFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if studyInstanceUID != "" {
		args = append(args, studyInstanceUID)
		conditions = append(conditions, fmt.Sprintf("study_instance_uid = $%d", len(args)))
	}
	if filter.SeriesInstanceUID != "" {
		args = append(args, filter.SeriesInstanceUID)
		conditions = append(conditions, fmt.Sprintf("series_instance_uid = $%d", len(args)))
	}
	if len(filter.ToolNames) > 0 {
		args = append(args, pq.Array(filter.ToolNames))
		conditions = append(conditions, fmt.Sprintf("tool_name = ANY($%d)", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns the measurements of a study matching filter, oldest first.
func (r *MeasurementRepository) List(ctx context.Context, studyInstanceUID string, filter models.MeasurementFilter) ([]models.Measurement, error) {
	where, args := measurementWhere(studyInstanceUID, filter)
	query := "SELECT id, study_instance_uid, series_instance_uid, tool_name, label, value, unit, created_at FROM measurements" + where + " ORDER BY created_at, id"

	var measurements []models.Measurement
	if err := r.db.SelectContext(ctx, &measurements, query, args...); err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	return measurements, nil
}

// Delete removes matching measurements and returns how many were removed. An empty study
// UID with an empty filter clears every measurement.
func (r *MeasurementRepository) Delete(ctx context.Context, studyInstanceUID string, filter models.MeasurementFilter) (int64, error) {
	where, args := measurementWhere(studyInstanceUID, filter)
	result, err := r.db.ExecContext(ctx, "DELETE FROM measurements"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete measurements: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete measurements rows affected: %w", err)
	}
	return affected, nil
}
