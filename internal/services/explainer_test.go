package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-optimizer/internal/models"
)

func TestExplainGroundsPromptInEntities(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: `{
		"mismatches": [
			{"field": "skills", "cv_value": "missing", "job_expectation": "Kubernetes", "explanation": "The job requires Kubernetes."},
			{"field": "experience", "cv_value": "4 years", "job_expectation": "6+ years", "explanation": "Two years short."}
		],
		"summary": "The main gaps are Kubernetes and seniority."
	}`}}}
	explainer := NewExplainerService(gemini)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionExperience, RawText: "Built payment services in Go at Acme"},
		},
	}
	job := &models.StructuredJob{
		Title: "Platform Engineer",
		RequiredSkills: []models.RequiredSkill{
			{Skill: "Go", Required: true},
			{Skill: "Kubernetes", Required: true},
		},
	}
	score := &models.SimilarityScore{
		Overall:        0.62,
		EmbeddingScore: 0.71,
		SectionScores: []models.SectionScore{
			{SectionType: models.SectionExperience, Score: 0.71},
		},
		LLMAnalysis: &models.LLMMatchAnalysis{
			SkillsScore:     0.5,
			ExperienceScore: 0.7,
			EducationScore:  0.6,
			LanguagesScore:  1.0,
			Gaps:            []string{"No Kubernetes experience"},
		},
	}

	report, err := explainer.Explain(context.Background(), cv, job, score)
	require.NoError(t, err)

	// The model's own severity ordering is preserved, never re-sorted.
	require.Len(t, report.Mismatches, 2)
	assert.Equal(t, "skills", report.Mismatches[0].Field)
	assert.Equal(t, "experience", report.Mismatches[1].Field)
	assert.NotEmpty(t, report.Summary)

	require.Len(t, gemini.prompts, 1)
	prompt := gemini.prompts[0]
	assert.Contains(t, prompt, "Platform Engineer")
	assert.Contains(t, prompt, "Go, Kubernetes")
	assert.Contains(t, prompt, "Built payment services in Go at Acme")
	assert.Contains(t, prompt, "0.6200")
	assert.Contains(t, prompt, "No Kubernetes experience")
}

func TestExplainWithoutLLMAnalysisUsesSectionScores(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: `{"summary": "ok"}`}}}
	explainer := NewExplainerService(gemini)

	score := &models.SimilarityScore{
		Overall:        0.4,
		EmbeddingScore: 0.4,
		SectionScores: []models.SectionScore{
			{SectionType: models.SectionSkills, Score: 0.4},
		},
	}

	report, err := explainer.Explain(context.Background(), &models.StructuredCV{}, &models.StructuredJob{Title: "Engineer"}, score)
	require.NoError(t, err)

	// nil mismatches from the model come back as an empty slice.
	assert.NotNil(t, report.Mismatches)
	assert.Empty(t, report.Mismatches)

	prompt := gemini.prompts[0]
	assert.Contains(t, prompt, "LLM analysis unavailable")
	assert.Contains(t, prompt, "section skills: 0.4000")
}

func TestExplainRejectsNilScore(t *testing.T) {
	explainer := NewExplainerService(&stubGemini{})

	_, err := explainer.Explain(context.Background(), &models.StructuredCV{}, &models.StructuredJob{}, nil)
	assert.Error(t, err)
}

func TestExplainExhaustedRetries(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: "no json here"}}}
	explainer := NewExplainerService(gemini)

	_, err := explainer.Explain(context.Background(), &models.StructuredCV{}, &models.StructuredJob{}, &models.SimilarityScore{})
	require.Error(t, err)
	assert.Equal(t, CodeLLMResponseInvalid, ErrorCode(err))
	assert.Equal(t, structuredMaxAttempts, gemini.calls)
}
