package models

type Mismatch struct {
	Field          string `json:"field"`
	CVValue        string `json:"cv_value"`
	JobExpectation string `json:"job_expectation"`
	Explanation    string `json:"explanation"`
}

// ExplanationReport lists mismatches most-to-least severe in the model's own
// ordering; the pipeline never re-sorts them.
type ExplanationReport struct {
	Mismatches []Mismatch `json:"mismatches"`
	Summary    string     `json:"summary"`
}

// OptimizedCV is the rewritten CV's display surface plus a change log.
// Every claim in it must be traceable to the original CV.
type OptimizedCV struct {
	Contact        ContactInfo `json:"contact"`
	Sections       []CVSection `json:"sections"`
	ChangesSummary []string    `json:"changes_summary"`
}

type ImprovedScore struct {
	Before SimilarityScore `json:"before"`
	After  SimilarityScore `json:"after"`
	Delta  float64         `json:"delta"`
}

// ComparisonReport is the pipeline's terminal artifact.
type ComparisonReport struct {
	ImprovedScore ImprovedScore     `json:"improved_score"`
	Explanation   ExplanationReport `json:"explanation"`
	OptimizedCV   OptimizedCV       `json:"optimized_cv"`
	Narrative     string            `json:"narrative"`
}

type ValidationResult struct {
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations"`
}

// PipelineResult is what a full run persists and returns: the report plus
// the validator's verdict as a warning annotation.
type PipelineResult struct {
	Report     ComparisonReport `json:"report"`
	Validation ValidationResult `json:"validation"`
}
