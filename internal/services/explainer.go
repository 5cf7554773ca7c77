package services

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// ExplainerService turns a match score into named mismatches. The model's
// own severity ordering is kept; nothing downstream re-sorts it.
type ExplainerService interface {
	Explain(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob, score *models.SimilarityScore) (*models.ExplanationReport, error)
}

type explainerService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewExplainerService(gemini GeminiService) ExplainerService {
	return &explainerService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// Explain implements ExplainerService.
func (e *explainerService) Explain(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob, score *models.SimilarityScore) (*models.ExplanationReport, error) {
	if score == nil {
		return nil, fmt.Errorf("cannot explain a nil score")
	}

	prompt := e.promptBuilder.BuildExplanationPrompt(cv, job, score)

	var report models.ExplanationReport
	if err := generateStructured(ctx, e.gemini, prompt, 0.3, &report); err != nil {
		return nil, fmt.Errorf("failed to generate explanation: %w", err)
	}

	if report.Mismatches == nil {
		report.Mismatches = []models.Mismatch{}
	}

	log.Printf("🔍 Explanation ready: %d mismatches\n", len(report.Mismatches))
	return &report, nil
}
