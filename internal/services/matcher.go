package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// Blend weights for the two scoring layers. Fixed by design.
const (
	embeddingBlendWeight = 0.35
	llmBlendWeight       = 0.65
)

// LLM sub-score weights. overall_llm_score is always recomputed from these;
// the model's own arithmetic is never trusted.
const (
	skillsSubWeight     = 0.40
	experienceSubWeight = 0.30
	educationSubWeight  = 0.15
	languagesSubWeight  = 0.15
)

// Per-section-type embedding weights. Aggregation renormalizes over the
// sections actually present, so a missing section is not a zero-similarity
// one. Types outside the table fall back to defaultSectionWeight.
var sectionWeights = map[models.SectionType]float64{
	models.SectionExperience:     0.30,
	models.SectionSkills:         0.30,
	models.SectionEducation:      0.15,
	models.SectionSummary:        0.10,
	models.SectionCertifications: 0.05,
	models.SectionLanguages:      0.05,
	models.SectionOther:          0.05,
}

const defaultSectionWeight = 0.05

func sectionWeight(t models.SectionType) float64 {
	if w, ok := sectionWeights[t]; ok {
		return w
	}
	return defaultSectionWeight
}

// MatcherService produces the hybrid match score: a section-weighted
// embedding score and an LLM judgment, blended into one overall score.
type MatcherService interface {
	Match(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob) (*models.SimilarityScore, error)
	ScoreSections(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob) (float64, []models.SectionScore, error)
	Analyze(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob) (*models.LLMMatchAnalysis, error)
}

type matcherService struct {
	embedder      EmbeddingService
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewMatcherService(embedder EmbeddingService, gemini GeminiService) MatcherService {
	return &matcherService{
		embedder:      embedder,
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// Match implements MatcherService. The embedding layer and the LLM layer
// have no data dependency, so they run concurrently and join before the
// blend. An embedding failure fails the whole stage; an LLM failure
// degrades to an embedding-only score with llm_analysis left empty.
func (m *matcherService) Match(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob) (*models.SimilarityScore, error) {
	var (
		wg sync.WaitGroup

		embeddingScore float64
		sectionScores  []models.SectionScore
		embeddingErr   error

		analysis *models.LLMMatchAnalysis
		llmErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		embeddingScore, sectionScores, embeddingErr = m.ScoreSections(ctx, cv, job)
	}()
	go func() {
		defer wg.Done()
		analysis, llmErr = m.Analyze(ctx, cv, job)
	}()
	wg.Wait()

	if embeddingErr != nil {
		return nil, embeddingErr
	}

	score := &models.SimilarityScore{
		EmbeddingScore: embeddingScore,
		SectionScores:  sectionScores,
	}

	if llmErr != nil {
		log.Printf("⚠️  LLM match analysis unavailable, using embedding-only score: %v\n", llmErr)
		score.Overall = embeddingScore
		return score, nil
	}

	overall, err := BlendScores(embeddingScore, analysis.OverallLLMScore)
	if err != nil {
		return nil, fmt.Errorf("failed to blend scores: %w", err)
	}

	score.LLMAnalysis = analysis
	score.Overall = overall
	return score, nil
}

// ScoreSections implements MatcherService: the embedding layer. The job is
// embedded once as the query; each non-empty CV section is embedded as a
// passage and compared by cosine similarity.
func (m *matcherService) ScoreSections(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob) (float64, []models.SectionScore, error) {
	jobVector, err := m.embedder.EmbedQuery(ctx, buildJobEmbeddingText(job))
	if err != nil {
		return 0, nil, err
	}

	sectionScores := make([]models.SectionScore, 0, len(cv.Sections)+1)
	var weightedSum, weightTotal float64

	scoreText := func(sectionType models.SectionType, text string) error {
		vector, err := m.embedder.EmbedPassage(ctx, text)
		if err != nil {
			return err
		}

		similarity := round4(clamp01(cosineSimilarity(jobVector, vector)))
		sectionScores = append(sectionScores, models.SectionScore{
			SectionType: sectionType,
			Score:       similarity,
		})

		weight := sectionWeight(sectionType)
		weightedSum += weight * similarity
		weightTotal += weight
		return nil
	}

	for _, section := range cv.Sections {
		text := strings.TrimSpace(section.RawText)
		if text == "" {
			continue
		}
		if err := scoreText(section.SectionType, text); err != nil {
			return 0, nil, err
		}
	}

	// A CV without a skills section still gets its listed skills scored
	if !cv.HasSection(models.SectionSkills) {
		if blob := skillsBlob(cv); blob != "" {
			if err := scoreText(models.SectionSkills, blob); err != nil {
				return 0, nil, err
			}
		}
	}

	if weightTotal == 0 {
		return 0, sectionScores, nil
	}

	return round4(weightedSum / weightTotal), sectionScores, nil
}

// Analyze implements MatcherService: the LLM layer. raw_text is stripped
// from both payloads to keep the prompt inside the token budget.
func (m *matcherService) Analyze(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob) (*models.LLMMatchAnalysis, error) {
	cvPayload := *cv
	cvPayload.RawText = ""
	jobPayload := *job
	jobPayload.RawText = ""

	cvJSON, err := json.MarshalIndent(&cvPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize CV: %w", err)
	}
	jobJSON, err := json.MarshalIndent(&jobPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize job: %w", err)
	}

	prompt := m.promptBuilder.BuildMatchAnalysisPrompt(string(cvJSON), string(jobJSON))

	var analysis models.LLMMatchAnalysis
	if err := generateStructured(ctx, m.gemini, prompt, 0.3, &analysis); err != nil {
		return nil, err
	}

	normalizeAnalysis(&analysis)
	return &analysis, nil
}

// normalizeAnalysis clamps the sub-scores and recomputes the derived
// overall. Mandatory: models are unreliable at weighted sums.
func normalizeAnalysis(a *models.LLMMatchAnalysis) {
	a.SkillsScore = clamp01(a.SkillsScore)
	a.ExperienceScore = clamp01(a.ExperienceScore)
	a.EducationScore = clamp01(a.EducationScore)
	a.LanguagesScore = clamp01(a.LanguagesScore)

	a.OverallLLMScore = round4(skillsSubWeight*a.SkillsScore +
		experienceSubWeight*a.ExperienceScore +
		educationSubWeight*a.EducationScore +
		languagesSubWeight*a.LanguagesScore)
}

// BlendScores combines the two layers: 0.35·embedding + 0.65·llm, clamped
// to [0,1]. Pure; NaN or out-of-range input is a caller bug.
func BlendScores(embeddingScore, llmScore float64) (float64, error) {
	if math.IsNaN(embeddingScore) || math.IsNaN(llmScore) {
		return 0, fmt.Errorf("blend input is NaN")
	}
	if embeddingScore < 0 || embeddingScore > 1 || llmScore < 0 || llmScore > 1 {
		return 0, fmt.Errorf("blend input out of range: embedding=%v llm=%v", embeddingScore, llmScore)
	}

	return round4(clamp01(embeddingBlendWeight*embeddingScore + llmBlendWeight*llmScore)), nil
}

// buildJobEmbeddingText assembles the job's query text: title, skills,
// responsibilities, qualifications, and skill enrichments.
func buildJobEmbeddingText(job *models.StructuredJob) string {
	var parts []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}

	add(job.Title)
	if names := job.SkillNames(); len(names) > 0 {
		add("Required skills: " + strings.Join(names, ", "))
	}
	add(strings.Join(job.Responsibilities, "\n"))
	add(strings.Join(job.Qualifications, "\n"))

	extras := append(append([]string{}, job.HardSkills...), job.Tools...)
	if len(extras) > 0 {
		add(strings.Join(extras, ", "))
	}

	return strings.Join(parts, "\n")
}

// skillsBlob builds a synthetic skills text from the CV's enrichment
// fields, used only when the CV has no skills section of its own.
func skillsBlob(cv *models.StructuredCV) string {
	var skills []string
	for _, s := range append(append([]string{}, cv.HardSkills...), cv.Tools...) {
		if strings.TrimSpace(s) != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		return ""
	}
	return "Skills: " + strings.Join(skills, ", ")
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
