package models

// SectionScore is one CV section's cosine similarity against the job, in [0,1].
type SectionScore struct {
	SectionType SectionType `json:"section_type"`
	Score       float64     `json:"score"`
}

type SkillDetail struct {
	Skill      string `json:"skill"`
	FoundInCV  bool   `json:"found_in_cv"`
	CVEvidence string `json:"cv_evidence,omitempty"`
}

// LLMMatchAnalysis is the LLM layer's verdict. OverallLLMScore is a derived
// field: 0.40·skills + 0.30·experience + 0.15·education + 0.15·languages,
// recomputed after parsing regardless of what the model claimed.
type LLMMatchAnalysis struct {
	SkillsScore     float64       `json:"skills_score"`
	ExperienceScore float64       `json:"experience_score"`
	EducationScore  float64       `json:"education_score"`
	LanguagesScore  float64       `json:"languages_score"`
	OverallLLMScore float64       `json:"overall_llm_score"`
	SkillDetails    []SkillDetail `json:"skill_details,omitempty"`
	Strengths       []string      `json:"strengths,omitempty"`
	Gaps            []string      `json:"gaps,omitempty"`
	Reasoning       string        `json:"reasoning,omitempty"`
}

// SimilarityScore is the match stage output. When LLMAnalysis is present,
// Overall = 0.35·EmbeddingScore + 0.65·LLMAnalysis.OverallLLMScore; when the
// LLM layer was unavailable, Overall equals EmbeddingScore alone.
type SimilarityScore struct {
	Overall        float64           `json:"overall"`
	SectionScores  []SectionScore    `json:"section_scores"`
	LLMAnalysis    *LLMMatchAnalysis `json:"llm_analysis,omitempty"`
	EmbeddingScore float64           `json:"embedding_score"`
}
