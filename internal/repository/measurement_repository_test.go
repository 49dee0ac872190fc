package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

func TestMeasurementListAppliesFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeasurementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "study_instance_uid", "series_instance_uid", "tool_name", "label", "value", "unit", "created_at"}).
		AddRow("m1", "1.2.3", "1.2.3.4", "Length", "lesion", 12.5, "mm", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM measurements WHERE study_instance_uid = $1 AND series_instance_uid = $2 AND tool_name = ANY($3) ORDER BY created_at, id")).
		WithArgs("1.2.3", "1.2.3.4", pq.Array([]string{"Length"})).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), "1.2.3", models.MeasurementFilter{SeriesInstanceUID: "1.2.3.4", ToolNames: []string{"Length"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 12.5, items[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeasurementDeleteReturnsCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeasurementRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM measurements WHERE study_instance_uid = $1")).
		WithArgs("1.2.3").
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.Delete(context.Background(), "1.2.3", models.MeasurementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	mock.ExpectExec("^DELETE FROM measurements$").WillReturnResult(sqlmock.NewResult(0, 9))
	deleted, err = repo.Delete(context.Background(), "", models.MeasurementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(9), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
