package worklist

import (
	"sort"
	"time"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

const (
	displayDateLayout = "Jan-02-2006"
	displayTimeLayout = "03:04 PM"

	emptySeriesDescription = "(empty)"
)

var studyTimeLayouts = []string{"15", "1504", "150405"}

// FormatStudyDate renders a study date for display. Dates outside the strict DICOM forms
// render as the empty string.
func FormatStudyDate(raw string) string {
	t, ok := ParseStudyDate(raw)
	if !ok {
		return ""
	}
	return t.Format(displayDateLayout)
}

// ParseStudyTime parses HH, HHmm and HHmmss, with optional fractional seconds.
func ParseStudyTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range studyTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatStudyTime renders a study time on a 12-hour clock, or the empty string.
func FormatStudyTime(raw string) string {
	t, ok := ParseStudyTime(raw)
	if !ok {
		return ""
	}
	return t.Format(displayTimeLayout)
}

// SortSeries orders series oldest first by date and time, then by series number. Series
// without a usable date go last.
func SortSeries(series []models.Series) []models.Series {
	ordered := make([]models.Series, len(series))
	copy(ordered, series)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		ta, okA := seriesTimestamp(a)
		tb, okB := seriesTimestamp(b)
		switch {
		case okA && okB && !ta.Equal(tb):
			return ta.Before(tb)
		case okA != okB:
			return okA
		}
		return a.SeriesNumber < b.SeriesNumber
	})
	return ordered
}

func seriesTimestamp(s models.Series) (time.Time, bool) {
	day, ok := ParseStudyDate(s.SeriesDate)
	if !ok {
		return time.Time{}, false
	}
	if clock, ok := ParseStudyTime(s.SeriesTime); ok {
		day = day.Add(time.Duration(clock.Hour())*time.Hour +
			time.Duration(clock.Minute())*time.Minute +
			time.Duration(clock.Second())*time.Second +
			time.Duration(clock.Nanosecond()))
	}
	return day, true
}

// SeriesRows projects series onto the expanded row table.
func SeriesRows(series []models.Series) []models.SeriesRow {
	rows := make([]models.SeriesRow, 0, len(series))
	for _, s := range series {
		description := s.Description
		if description == "" {
			description = emptySeriesDescription
		}
		rows = append(rows, models.SeriesRow{
			SeriesInstanceUID: s.SeriesInstanceUID,
			Description:       description,
			Modality:          s.Modality,
			NumInstances:      s.NumInstances,
		})
	}
	return rows
}
