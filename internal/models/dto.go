package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

type ExtractResponse struct {
	Filename string `json:"filename"`
	RawText  string `json:"raw_text"`
}

type ParseCVRequest struct {
	RawText string `json:"raw_text" validate:"required"`
}

type NormalizeJobRequest struct {
	RawText string `json:"raw_text" validate:"required"`
}

type MatchRequest struct {
	CV  StructuredCV  `json:"cv"`
	Job StructuredJob `json:"job"`
}

type ExplainRequest struct {
	CV    StructuredCV    `json:"cv"`
	Job   StructuredJob   `json:"job"`
	Score SimilarityScore `json:"score"`
}

type RewriteRequest struct {
	CV          StructuredCV      `json:"cv"`
	Job         StructuredJob     `json:"job"`
	Explanation ExplanationReport `json:"explanation"`
}

// CompareRequest feeds the validate, rescore and report tail of the
// pipeline. OptimizedCVView, when given, is used directly as the rescoring
// view instead of rebuilding one from OptimizedCV.
type CompareRequest struct {
	OriginalCV      *StructuredCV      `json:"original_cv"`
	OptimizedCV     *OptimizedCV       `json:"optimized_cv"`
	Job             *StructuredJob     `json:"job"`
	OriginalScore   *SimilarityScore   `json:"original_score"`
	Explanation     *ExplanationReport `json:"explanation,omitempty"`
	OptimizedCVView *StructuredCV      `json:"optimized_cv_view,omitempty"`
}

type OptimizeRequest struct {
	CVDocumentID  string `json:"cv_document_id" validate:"required,uuid"`
	JobDocumentID string `json:"job_document_id,omitempty"`
	JobText       string `json:"job_text,omitempty"`
}

type OptimizeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type RunResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Stage        string          `json:"stage,omitempty"`
	Result       *PipelineResult `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}
