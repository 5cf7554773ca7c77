package services

import (
	"context"
	"log"
	"strings"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// ReporterService assembles the final comparison report. The narrative is
// the one free-text LLM call in the pipeline; when it fails after retries
// the report ships with an empty narrative rather than failing the run.
type ReporterService interface {
	BuildReport(ctx context.Context, improved *models.ImprovedScore, explanation *models.ExplanationReport, optimized *models.OptimizedCV) *models.ComparisonReport
}

type reporterService struct {
	gemini     GeminiService
	prompts    *PromptBuilder
	maxRetries int
}

func NewReporterService(gemini GeminiService, maxRetries int) ReporterService {
	return &reporterService{
		gemini:     gemini,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
	}
}

// BuildReport implements ReporterService.
func (r *reporterService) BuildReport(ctx context.Context, improved *models.ImprovedScore, explanation *models.ExplanationReport, optimized *models.OptimizedCV) *models.ComparisonReport {
	report := &models.ComparisonReport{
		ImprovedScore: *improved,
		Explanation:   *explanation,
		OptimizedCV:   *optimized,
	}

	prompt := r.prompts.BuildNarrativePrompt(improved, explanation, optimized)
	narrative, err := r.gemini.GenerateTextWithRetry(ctx, prompt, 0.5, r.maxRetries)
	if err != nil {
		log.Printf("⚠️ Narrative generation failed, shipping report without one: %v", err)
		return report
	}

	report.Narrative = strings.TrimSpace(narrative)
	log.Printf("📝 Comparison report assembled (narrative %d chars)", len(report.Narrative))
	return report
}
