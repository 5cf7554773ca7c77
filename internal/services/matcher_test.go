package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/cv-optimizer/internal/models"
)

func TestBlendScores(t *testing.T) {
	tests := []struct {
		name           string
		embeddingScore float64
		llmScore       float64
		expected       float64
	}{
		{name: "both zero", embeddingScore: 0, llmScore: 0, expected: 0},
		{name: "both one", embeddingScore: 1, llmScore: 1, expected: 1},
		{name: "mixed", embeddingScore: 0.5, llmScore: 0.7, expected: 0.63},
		{name: "embedding only weight", embeddingScore: 1, llmScore: 0, expected: 0.35},
		{name: "llm only weight", embeddingScore: 0, llmScore: 1, expected: 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BlendScores(tt.embeddingScore, tt.llmScore)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestBlendScoresIdempotent(t *testing.T) {
	first, err := BlendScores(0.4217, 0.6834)
	require.NoError(t, err)

	second, err := BlendScores(0.4217, 0.6834)
	require.NoError(t, err)

	// Pure function: bit-identical output for identical input.
	assert.Equal(t, first, second)
}

func TestBlendScoresRejectsBadInput(t *testing.T) {
	nan := func() float64 {
		zero := 0.0
		return zero / zero
	}()

	tests := []struct {
		name           string
		embeddingScore float64
		llmScore       float64
	}{
		{name: "NaN embedding", embeddingScore: nan, llmScore: 0.5},
		{name: "NaN llm", embeddingScore: 0.5, llmScore: nan},
		{name: "negative embedding", embeddingScore: -0.1, llmScore: 0.5},
		{name: "embedding above one", embeddingScore: 1.1, llmScore: 0.5},
		{name: "llm above one", embeddingScore: 0.5, llmScore: 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BlendScores(tt.embeddingScore, tt.llmScore)
			assert.Error(t, err)
		})
	}
}

func TestScoreSectionsRenormalizesOverPresentTypes(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Led backend development for five years": {1, 0},
			"Go, PostgreSQL":                         {0, 1},
		},
	}
	matcher := NewMatcherService(embedder, &stubGemini{}).(*matcherService)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionExperience, RawText: "Led backend development for five years"},
			{SectionType: models.SectionSkills, RawText: "Go, PostgreSQL"},
		},
	}
	job := &models.StructuredJob{Title: "Backend Engineer"}

	score, sections, err := matcher.ScoreSections(context.Background(), cv, job)
	require.NoError(t, err)

	// experience=1.0, skills=0.0; weights 0.30/0.30 renormalize to 0.5/0.5.
	assert.InDelta(t, 0.5, score, 1e-9)
	require.Len(t, sections, 2)
	assert.Equal(t, models.SectionExperience, sections[0].SectionType)
	assert.InDelta(t, 1.0, sections[0].Score, 1e-9)
	assert.Equal(t, models.SectionSkills, sections[1].SectionType)
	assert.InDelta(t, 0.0, sections[1].Score, 1e-9)
}

func TestScoreSectionsZeroSections(t *testing.T) {
	embedder := &stubEmbedder{queryVec: []float32{1, 0}}
	matcher := NewMatcherService(embedder, &stubGemini{}).(*matcherService)

	cv := &models.StructuredCV{}
	job := &models.StructuredJob{Title: "Backend Engineer"}

	score, sections, err := matcher.ScoreSections(context.Background(), cv, job)
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.NotNil(t, sections)
	assert.Empty(t, sections)
}

func TestScoreSectionsSkipsEmptySections(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Shipped two products": {1, 0},
		},
	}
	matcher := NewMatcherService(embedder, &stubGemini{}).(*matcherService)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionSummary, RawText: "   "},
			{SectionType: models.SectionExperience, RawText: "Shipped two products"},
		},
	}

	score, sections, err := matcher.ScoreSections(context.Background(), cv, &models.StructuredJob{Title: "PM"})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, models.SectionExperience, sections[0].SectionType)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreSectionsInjectsSkillsBlob(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Built data pipelines":          {1, 0},
			"Skills: Python, SQL, Airflow": {0.6, 0.8},
		},
	}
	matcher := NewMatcherService(embedder, &stubGemini{}).(*matcherService)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionExperience, RawText: "Built data pipelines"},
		},
		HardSkills: []string{"Python", "SQL"},
		Tools:      []string{"Airflow"},
	}

	score, sections, err := matcher.ScoreSections(context.Background(), cv, &models.StructuredJob{Title: "Data Engineer"})
	require.NoError(t, err)

	require.Len(t, sections, 2)
	assert.Equal(t, models.SectionSkills, sections[1].SectionType)
	assert.InDelta(t, 0.6, sections[1].Score, 1e-9)
	assert.Contains(t, embedder.passageTexts, "Skills: Python, SQL, Airflow")

	// (0.30·1.0 + 0.30·0.6) / 0.60
	assert.InDelta(t, 0.8, score, 1e-9)
}

func TestScoreSectionsNoBlobWhenSkillsSectionExists(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Python, SQL": {1, 0},
		},
	}
	matcher := NewMatcherService(embedder, &stubGemini{}).(*matcherService)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionSkills, RawText: "Python, SQL"},
		},
		HardSkills: []string{"Python", "SQL"},
	}

	_, sections, err := matcher.ScoreSections(context.Background(), cv, &models.StructuredJob{Title: "Data Engineer"})
	require.NoError(t, err)
	assert.Len(t, sections, 1)
	assert.Len(t, embedder.passageTexts, 1)
}

func TestScoreSectionsEmbedsJobAsQueryOnly(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Go, Docker": {1, 0},
		},
	}
	matcher := NewMatcherService(embedder, &stubGemini{}).(*matcherService)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionSkills, RawText: "Go, Docker"},
		},
	}
	job := &models.StructuredJob{
		Title: "Platform Engineer",
		RequiredSkills: []models.RequiredSkill{
			{Skill: "Go", Required: true},
			{Skill: "Kubernetes", Required: false},
		},
		Responsibilities: []string{"Operate the container platform"},
	}

	_, _, err := matcher.ScoreSections(context.Background(), cv, job)
	require.NoError(t, err)

	require.Len(t, embedder.queryTexts, 1)
	assert.Contains(t, embedder.queryTexts[0], "Platform Engineer")
	assert.Contains(t, embedder.queryTexts[0], "Required skills: Go, Kubernetes")
	assert.Contains(t, embedder.queryTexts[0], "Operate the container platform")
	assert.Equal(t, []string{"Go, Docker"}, embedder.passageTexts)
}

func TestAnalyzeRecomputesOverallScore(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: `{
		"skills_score": 1.0,
		"experience_score": 0.5,
		"education_score": 0.0,
		"languages_score": 1.0,
		"overall_llm_score": 0.99,
		"skill_details": [
			{"skill": "Python", "found_in_cv": true, "cv_evidence": "Skills: Python"},
			{"skill": "Go", "found_in_cv": false, "cv_evidence": ""}
		],
		"reasoning": "Strong skills, moderate experience."
	}`}}}
	matcher := NewMatcherService(&stubEmbedder{}, gemini).(*matcherService)

	cv := &models.StructuredCV{RawText: "full cv text", HardSkills: []string{"Python"}}
	job := &models.StructuredJob{Title: "Backend Engineer", RawText: "full job text"}

	analysis, err := matcher.Analyze(context.Background(), cv, job)
	require.NoError(t, err)

	// 0.40·1.0 + 0.30·0.5 + 0.15·0.0 + 0.15·1.0, not the model's 0.99.
	assert.InDelta(t, 0.70, analysis.OverallLLMScore, 1e-9)

	require.Len(t, analysis.SkillDetails, 2)
	assert.True(t, analysis.SkillDetails[0].FoundInCV)
	assert.False(t, analysis.SkillDetails[1].FoundInCV)

	// raw_text stays out of the prompt payload.
	require.Len(t, gemini.prompts, 1)
	assert.NotContains(t, gemini.prompts[0], "full cv text")
	assert.NotContains(t, gemini.prompts[0], "full job text")
}

func TestAnalyzeClampsSubScores(t *testing.T) {
	gemini := &stubGemini{script: []geminiCall{{response: `{
		"skills_score": 1.5,
		"experience_score": -0.2,
		"education_score": 0.5,
		"languages_score": 0.5,
		"overall_llm_score": 0.0
	}`}}}
	matcher := NewMatcherService(&stubEmbedder{}, gemini).(*matcherService)

	analysis, err := matcher.Analyze(context.Background(), &models.StructuredCV{}, &models.StructuredJob{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, analysis.SkillsScore)
	assert.Equal(t, 0.0, analysis.ExperienceScore)
	// 0.40·1.0 + 0.30·0.0 + 0.15·0.5 + 0.15·0.5
	assert.InDelta(t, 0.55, analysis.OverallLLMScore, 1e-9)
}

func TestMatchBlendsBothLayers(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Go, Docker": {0.6, 0.8},
		},
	}
	gemini := &stubGemini{script: []geminiCall{{response: `{
		"skills_score": 0.8,
		"experience_score": 0.8,
		"education_score": 0.8,
		"languages_score": 0.8
	}`}}}
	matcher := NewMatcherService(embedder, gemini)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionSkills, RawText: "Go, Docker"},
		},
	}

	score, err := matcher.Match(context.Background(), cv, &models.StructuredJob{Title: "Platform Engineer"})
	require.NoError(t, err)

	require.NotNil(t, score.LLMAnalysis)
	assert.InDelta(t, 0.6, score.EmbeddingScore, 1e-9)
	assert.InDelta(t, 0.8, score.LLMAnalysis.OverallLLMScore, 1e-9)
	// 0.35·0.6 + 0.65·0.8
	assert.InDelta(t, 0.73, score.Overall, 1e-9)
}

func TestMatchEmbeddingFailureIsFatal(t *testing.T) {
	gemini := &stubGemini{
		embedErr: errors.New("embedding backend down"),
		script: []geminiCall{{response: `{
			"skills_score": 0.8, "experience_score": 0.8,
			"education_score": 0.8, "languages_score": 0.8
		}`}},
	}
	embedder := NewEmbeddingService(gemini, nil, "text-embedding-004")
	matcher := NewMatcherService(embedder, gemini)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionSkills, RawText: "Go"},
		},
	}

	_, err := matcher.Match(context.Background(), cv, &models.StructuredJob{Title: "Engineer"})
	require.Error(t, err)
	assert.Equal(t, CodeEmbeddingUnavailable, ErrorCode(err))
}

func TestMatchDegradesToEmbeddingOnlyOnLLMFailure(t *testing.T) {
	embedder := &stubEmbedder{
		queryVec: []float32{1, 0},
		passages: map[string][]float32{
			"Go, Docker": {1, 0},
		},
	}
	gemini := &stubGemini{script: []geminiCall{{err: errors.New("model overloaded")}}}
	matcher := NewMatcherService(embedder, gemini)

	cv := &models.StructuredCV{
		Sections: []models.CVSection{
			{SectionType: models.SectionSkills, RawText: "Go, Docker"},
		},
	}

	score, err := matcher.Match(context.Background(), cv, &models.StructuredJob{Title: "Engineer"})
	require.NoError(t, err)

	assert.Nil(t, score.LLMAnalysis)
	assert.Equal(t, score.EmbeddingScore, score.Overall)
	assert.InDelta(t, 1.0, score.EmbeddingScore, 1e-9)
	// The analyzer spent its full attempt budget before giving up.
	assert.Equal(t, structuredMaxAttempts, gemini.calls)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expected: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, expected: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 1}, expected: 0},
		{name: "empty", a: nil, b: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
