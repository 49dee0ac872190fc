package worklist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

func TestFormatStudyDate(t *testing.T) {
	assert.Equal(t, "Mar-07-2024", FormatStudyDate("20240307"))
	assert.Equal(t, "Dec-31-1999", FormatStudyDate("1999.12.31"))
	assert.Equal(t, "", FormatStudyDate("2024-03-07"))
	assert.Equal(t, "", FormatStudyDate(""))
}

func TestFormatStudyTime(t *testing.T) {
	cases := map[string]string{
		"09":         "09:00 AM",
		"1430":       "02:30 PM",
		"235959":     "11:59 PM",
		"083015.123": "08:30 AM",
		"":           "",
		"99":         "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, FormatStudyTime(raw), raw)
	}
}

func TestSortSeriesOldestFirst(t *testing.T) {
	series := []models.Series{
		{SeriesInstanceUID: "late", SeriesDate: "20240102", SeriesNumber: 1},
		{SeriesInstanceUID: "nodate", SeriesNumber: 0},
		{SeriesInstanceUID: "early-2", SeriesDate: "20240101", SeriesTime: "1200", SeriesNumber: 2},
		{SeriesInstanceUID: "early-1", SeriesDate: "20240101", SeriesTime: "0800", SeriesNumber: 3},
	}

	got := SortSeries(series)
	order := make([]string, 0, len(got))
	for _, s := range got {
		order = append(order, s.SeriesInstanceUID)
	}
	assert.Equal(t, []string{"early-1", "early-2", "late", "nodate"}, order)
}

func TestSeriesRowsFallbackDescription(t *testing.T) {
	rows := SeriesRows([]models.Series{
		{SeriesInstanceUID: "1", Description: "AX T1", Modality: "MR", NumInstances: 20},
		{SeriesInstanceUID: "2", Modality: "SR"},
	})
	assert.Equal(t, "AX T1", rows[0].Description)
	assert.Equal(t, "(empty)", rows[1].Description)
	assert.Equal(t, "SR", rows[1].Modality)
}
