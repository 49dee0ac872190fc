package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

const studyColumns = "study_instance_uid, accession, modalities, instances, description, mrn, patient_name, study_date, study_time"

var dateDigits = strings.NewReplacer(".", "", "-", "", "/", "")

// StudyRepository serves the worklist study list from PostgreSQL.
type StudyRepository struct {
	db *sqlx.DB
}

// NewStudyRepository creates a new StudyRepository.
func NewStudyRepository(db *sqlx.DB) *StudyRepository {
	return &StudyRepository{db: db}
}

// Search returns one data window of studies matching the filter values, newest first.
// Text filters match case-insensitive substrings; the date range compares YYYYMMDD digits.
func (r *StudyRepository) Search(ctx context.Context, state models.FilterState, window models.DataWindow) ([]models.Study, error) {
	var conditions []string
	var args []interface{}

	like := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+escapeLike(value)+"%")
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}

	like("patient_name", state.PatientName)
	like("mrn", state.MRN)
	like("description", state.Description)
	like("accession", state.Accession)

	if start := normalizeDate(state.StudyDate.StartDate); start != "" {
		args = append(args, start)
		conditions = append(conditions, fmt.Sprintf("REPLACE(study_date, '.', '') >= $%d", len(args)))
	}
	if end := normalizeDate(state.StudyDate.EndDate); end != "" {
		args = append(args, end)
		conditions = append(conditions, fmt.Sprintf("REPLACE(study_date, '.', '') <= $%d", len(args)))
	}
	if len(state.Modalities) > 0 {
		modalities := make([]string, 0, len(state.Modalities))
		for _, m := range state.Modalities {
			modalities = append(modalities, strings.ToUpper(m))
		}
		args = append(args, pq.Array(modalities))
		conditions = append(conditions, fmt.Sprintf(`string_to_array(REPLACE(UPPER(modalities), '\', '/'), '/') && $%d::text[]`, len(args)))
	}

	query := "SELECT " + studyColumns + " FROM studies"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := window.Limit
	if limit <= 0 {
		limit = 101
	}
	offset := window.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY study_date DESC, study_time DESC, study_instance_uid LIMIT %d OFFSET %d", limit, offset)

	var studies []models.Study
	if err := r.db.SelectContext(ctx, &studies, query, args...); err != nil {
		return nil, fmt.Errorf("search studies: %w", err)
	}
	return studies, nil
}

// FindByUID returns a single study.
func (r *StudyRepository) FindByUID(ctx context.Context, uid string) (*models.Study, error) {
	query := "SELECT " + studyColumns + " FROM studies WHERE study_instance_uid = $1 LIMIT 1"
	var study models.Study
	if err := r.db.GetContext(ctx, &study, query, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find study: %w", err)
	}
	return &study, nil
}

func normalizeDate(v *string) string {
	if v == nil {
		return ""
	}
	return dateDigits.Replace(strings.TrimSpace(*v))
}

func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(v)
}
