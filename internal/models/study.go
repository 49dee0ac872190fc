package models

// Study is one worklist row as served by the study data source.
type Study struct {
	StudyInstanceUID string `db:"study_instance_uid" json:"study_instance_uid" yaml:"studyInstanceUid"`
	Accession        string `db:"accession" json:"accession" yaml:"accession"`
	Modalities       string `db:"modalities" json:"modalities" yaml:"modalities"`
	Instances        int    `db:"instances" json:"instances" yaml:"instances"`
	Description      string `db:"description" json:"description" yaml:"description"`
	MRN              string `db:"mrn" json:"mrn" yaml:"mrn"`
	PatientName      string `db:"patient_name" json:"patient_name" yaml:"patientName"`
	Date             string `db:"study_date" json:"date" yaml:"date"`
	Time             string `db:"study_time" json:"time" yaml:"time"`
}

// Series is a set of images acquired together within a study.
type Series struct {
	SeriesInstanceUID string `db:"series_instance_uid" json:"series_instance_uid"`
	StudyInstanceUID  string `db:"study_instance_uid" json:"study_instance_uid"`
	SeriesNumber      int    `db:"series_number" json:"series_number"`
	Modality          string `db:"modality" json:"modality"`
	Description       string `db:"description" json:"description"`
	SeriesDate        string `db:"series_date" json:"series_date"`
	SeriesTime        string `db:"series_time" json:"series_time"`
	NumInstances      int    `db:"num_instances" json:"num_instances"`
}

// SeriesRow is the expanded-row projection of a series.
type SeriesRow struct {
	SeriesInstanceUID string `json:"series_instance_uid"`
	Description       string `json:"description"`
	Modality          string `json:"modality"`
	NumInstances      int    `json:"num_instances"`
}

// DataWindow selects the slice of the upstream study list served in one fetch.
type DataWindow struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DataSourceConfig mirrors what the study data source advertises to the worklist.
type DataSourceConfig struct {
	DICOMUploadEnabled bool   `json:"dicom_upload_enabled"`
	ArchiveUIURL       string `json:"archive_ui_url,omitempty"`
}
