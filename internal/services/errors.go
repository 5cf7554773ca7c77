package services

import (
	"errors"
	"fmt"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// Error codes carried by PipelineError. Handlers map them onto HTTP
// statuses; the worker persists them inside the run's error message.
const (
	CodeExtractionFailed       = "EXTRACTION_FAILED"
	CodeEmbeddingUnavailable   = "EMBEDDING_UNAVAILABLE"
	CodeLLMResponseInvalid     = "LLM_RESPONSE_INVALID"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeStageSequenceViolation = "STAGE_SEQUENCE_VIOLATION"
)

// PipelineError is the typed error the pipeline surfaces. Stage is filled
// in by the orchestrator so a caller always learns which stage broke; Raw
// carries the last raw LLM response when the code is LLM_RESPONSE_INVALID.
type PipelineError struct {
	Stage models.PipelineStage
	Code  string
	Raw   string
	Err   error
}

func (e *PipelineError) Error() string {
	switch {
	case e.Stage != "" && e.Code != "":
		return fmt.Sprintf("%s at stage %s: %v", e.Code, e.Stage, e.Err)
	case e.Stage != "":
		return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the pipeline error code from err, or "" when err is
// not a PipelineError.
func ErrorCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// RawResponse extracts the raw LLM response attached to err, if any.
func RawResponse(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Raw
	}
	return ""
}

func errExtractionFailed(err error) error {
	return &PipelineError{Code: CodeExtractionFailed, Err: err}
}

func errEmbeddingUnavailable(err error) error {
	return &PipelineError{Code: CodeEmbeddingUnavailable, Err: err}
}

func errLLMResponseInvalid(raw string, err error) error {
	return &PipelineError{Code: CodeLLMResponseInvalid, Raw: raw, Err: err}
}

func errStageSequence(from, to models.PipelineStage) error {
	if from == "" {
		from = "start"
	}
	return &PipelineError{
		Code: CodeStageSequenceViolation,
		Err:  fmt.Errorf("cannot enter stage %s from %s", to, from),
	}
}

// stageError stamps err with the stage it occurred in. A PipelineError
// keeps its code; anything else is wrapped so the caller still learns the
// failing stage.
func stageError(stage models.PipelineStage, err error) error {
	var pe *PipelineError
	if errors.As(err, &pe) {
		if pe.Stage == "" {
			pe.Stage = stage
		}
		return err
	}
	return &PipelineError{Stage: stage, Err: err}
}
