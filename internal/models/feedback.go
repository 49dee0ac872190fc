package models

import "time"

// StudyFeedback is the radiologist's assessment of a whole study.
type StudyFeedback struct {
	ID               string    `db:"id" json:"id"`
	StudyInstanceUID string    `db:"study_instance_uid" json:"study_instance_uid"`
	Composition      string    `db:"composition" json:"composition" validate:"required,oneof=A B C D"`
	BiradsLeft       string    `db:"birads_left" json:"birads_left" validate:"required,oneof=B0 B1 B2 B3 B4 B5"`
	BiradsRight      string    `db:"birads_right" json:"birads_right" validate:"required,oneof=B0 B1 B2 B3 B4 B5"`
	DetectionUseful  string    `db:"detection_useful" json:"detection_useful" validate:"required,oneof=Evet Hayır"`
	Note             string    `db:"note" json:"note" validate:"max=2000"`
	SubmittedBy      string    `db:"submitted_by" json:"submitted_by"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DisplaySetFeedback reviews the automated findings shown on one display set.
type DisplaySetFeedback struct {
	ID                    string    `db:"id" json:"id"`
	DisplaySetInstanceUID string    `db:"display_set_instance_uid" json:"display_set_instance_uid"`
	DensityCorrect        string    `db:"density_correct" json:"density_correct" validate:"required,oneof=yes no"`
	DensityValue          string    `db:"density_value" json:"density_value" validate:"omitempty,oneof=A B C D"`
	BiradsCorrect         string    `db:"birads_correct" json:"birads_correct" validate:"required,oneof=yes no"`
	BiradsValue           string    `db:"birads_value" json:"birads_value" validate:"omitempty,oneof=1 2 3"`
	AnnotationCorrect     string    `db:"annotation_correct" json:"annotation_correct" validate:"required,oneof=yes no"`
	ProcedureDate         string    `db:"procedure_date" json:"procedure_date" validate:"omitempty,datetime=2006-01-02"`
	Note                  string    `db:"note" json:"note" validate:"max=2000"`
	SubmittedBy           string    `db:"submitted_by" json:"submitted_by"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
