package export

import (
	"strconv"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Report is a titled dataset with free-form header lines above the table.
type Report struct {
	Title   string
	Summary []string
	Data    Dataset
}

// Renderer turns a report into file bytes.
type Renderer interface {
	Render(report Report) ([]byte, error)
	Extension() string
	ContentType() string
}

var measurementHeaders = []string{
	"StudyInstanceUID", "SeriesInstanceUID", "Tool", "Label", "Value", "Unit", "Created",
}

// MeasurementReport lays out a study's measurements one per row.
func MeasurementReport(study models.Study, measurements []models.Measurement) Report {
	rows := make([]map[string]string, 0, len(measurements))
	for _, m := range measurements {
		rows = append(rows, map[string]string{
			"StudyInstanceUID":  m.StudyInstanceUID,
			"SeriesInstanceUID": m.SeriesInstanceUID,
			"Tool":              m.ToolName,
			"Label":             m.Label,
			"Value":             strconv.FormatFloat(m.Value, 'f', -1, 64),
			"Unit":              m.Unit,
			"Created":           m.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	summary := []string{"Study: " + study.StudyInstanceUID}
	if study.PatientName != "" {
		summary = append(summary, "Patient: "+study.PatientName)
	}
	if study.MRN != "" {
		summary = append(summary, "MRN: "+study.MRN)
	}
	if study.Date != "" {
		summary = append(summary, "Date: "+study.Date)
	}

	return Report{
		Title:   "Measurements Report",
		Summary: summary,
		Data:    Dataset{Headers: measurementHeaders, Rows: rows},
	}
}
