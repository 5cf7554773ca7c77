package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusQueued     RunStatus = "queued"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// PipelineStage labels the pipeline's forward-only states. A run's Stage
// column records the last completed stage, so a failed run tells which
// transition broke.
type PipelineStage string

const (
	StageExtracted PipelineStage = "extracted"
	StageParsed    PipelineStage = "parsed"
	StageMatched   PipelineStage = "matched"
	StageExplained PipelineStage = "explained"
	StageRewritten PipelineStage = "rewritten"
	StageValidated PipelineStage = "validated"
	StageRescored  PipelineStage = "rescored"
	StageReported  PipelineStage = "reported"
)

type PipelineRun struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CVDocumentID  uuid.UUID     `gorm:"type:uuid;not null" json:"cv_document_id"`
	JobDocumentID *uuid.UUID    `gorm:"type:uuid" json:"job_document_id,omitempty"`
	JobText       *string       `gorm:"type:text" json:"job_text,omitempty"`
	Status        RunStatus     `gorm:"not null;default:'queued'" json:"status"`
	Stage         PipelineStage `gorm:"type:text" json:"stage,omitempty"`
	Result        *string       `gorm:"type:jsonb" json:"result,omitempty"`
	ErrorMessage  *string       `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	CVDocument  Document  `gorm:"foreignKey:CVDocumentID" json:"-"`
	JobDocument *Document `gorm:"foreignKey:JobDocumentID" json:"-"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
