package models

// UploadStatus tracks a single file through the store queue.
type UploadStatus string

const (
	UploadQueued UploadStatus = "queued"
	UploadStored UploadStatus = "stored"
	UploadFailed UploadStatus = "failed"
)

// UploadFile is one DICOM Part 10 file accepted for storage.
type UploadFile struct {
	JobID            string       `json:"job_id"`
	FileName         string       `json:"file_name"`
	StudyInstanceUID string       `json:"study_instance_uid,omitempty"`
	Status           UploadStatus `json:"status"`
}

// UploadBatch is returned once every file of an upload has been queued.
type UploadBatch struct {
	ID                string       `json:"id"`
	Files             []UploadFile `json:"files"`
	StudyInstanceUIDs []string     `json:"study_instance_uids"`
	RedirectQuery     string       `json:"redirect_query"`
}
