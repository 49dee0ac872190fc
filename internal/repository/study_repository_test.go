package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

var studyRowColumns = []string{"study_instance_uid", "accession", "modalities", "instances", "description", "mrn", "patient_name", "study_date", "study_time"}

func TestStudySearchWithoutFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudyRepository(db)

	rows := sqlmock.NewRows(studyRowColumns).
		AddRow("1.2.3", "ACC1", "CT/SR", 12, "CHEST", "M1", "DOE^JOHN", "20240101", "101500")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studyColumns + " FROM studies ORDER BY study_date DESC, study_time DESC, study_instance_uid LIMIT 101 OFFSET 0")).
		WillReturnRows(rows)

	studies, err := repo.Search(context.Background(), models.FilterState{}, models.DataWindow{Limit: 101})
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, "DOE^JOHN", studies[0].PatientName)
	assert.Equal(t, 12, studies[0].Instances)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudySearchBuildsConditions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudyRepository(db)

	start := "2024.01.01"
	end := "20240131"
	state := models.FilterState{
		PatientName: "do_e",
		Accession:   "A1",
		Modalities:  []string{"ct", "MR"},
		StudyDate:   models.StudyDateRange{StartDate: &start, EndDate: &end},
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM studies WHERE patient_name ILIKE $1 AND accession ILIKE $2 AND REPLACE(study_date, '.', '') >= $3 AND REPLACE(study_date, '.', '') <= $4 AND string_to_array(REPLACE(UPPER(modalities), '\', '/'), '/') && $5::text[] ORDER BY study_date DESC, study_time DESC, study_instance_uid LIMIT 101 OFFSET 100`)).
		WithArgs(`%do\_e%`, "%A1%", "20240101", "20240131", pq.Array([]string{"CT", "MR"})).
		WillReturnRows(sqlmock.NewRows(studyRowColumns))

	studies, err := repo.Search(context.Background(), state, models.DataWindow{Offset: 100, Limit: 101})
	require.NoError(t, err)
	assert.Empty(t, studies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyFindByUIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudyRepository(db)

	mock.ExpectQuery("FROM studies WHERE study_instance_uid = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
