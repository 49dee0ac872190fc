package models

import "time"

// Measurement is a single annotation value recorded against a study.
type Measurement struct {
	ID                string    `db:"id" json:"id"`
	StudyInstanceUID  string    `db:"study_instance_uid" json:"study_instance_uid"`
	SeriesInstanceUID string    `db:"series_instance_uid" json:"series_instance_uid"`
	ToolName          string    `db:"tool_name" json:"tool_name"`
	Label             string    `db:"label" json:"label"`
	Value             float64   `db:"value" json:"value"`
	Unit              string    `db:"unit" json:"unit"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// MeasurementFilter narrows which measurements of a study a command touches.
type MeasurementFilter struct {
	SeriesInstanceUID string   `json:"series_instance_uid,omitempty"`
	ToolNames         []string `json:"tool_names,omitempty"`
}

// MeasurementReportPayload is the argument of the report download commands.
type MeasurementReportPayload struct {
	StudyInstanceUID  string            `json:"StudyInstanceUID" validate:"required"`
	MeasurementFilter MeasurementFilter `json:"measurementFilter"`
}

// ClearMeasurementsPayload is the argument of the clearMeasurements command.
type ClearMeasurementsPayload struct {
	StudyInstanceUID  string            `json:"StudyInstanceUID,omitempty"`
	MeasurementFilter MeasurementFilter `json:"measurementFilter"`
}

// MeasurementUpload is posted verbatim to the downstream measurement service.
type MeasurementUpload struct {
	StudyInstanceUID  string            `json:"StudyInstanceUID" validate:"required"`
	MeasurementFilter MeasurementFilter `json:"measurementFilter"`
	Items             []Measurement     `json:"items" validate:"required,min=1,dive"`
}

// ReportFormat enumerates supported measurement report formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportLink points at a generated report file.
type ReportLink struct {
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}

// ClearResult reports how many measurements a clear removed.
type ClearResult struct {
	Deleted int64 `json:"deleted"`
}
