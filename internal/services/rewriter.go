package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// RewriterService proposes an improved CV under the truth constraint: no
// skill, employer, title, duration, or number may appear that is not
// traceable to the original CV. The constraint is instructed here and
// checked deterministically by the validator.
type RewriterService interface {
	Rewrite(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob, explanation *models.ExplanationReport) (*models.OptimizedCV, error)
}

type rewriterService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewRewriterService(gemini GeminiService) RewriterService {
	return &rewriterService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// Rewrite implements RewriterService.
func (r *rewriterService) Rewrite(ctx context.Context, cv *models.StructuredCV, job *models.StructuredJob, explanation *models.ExplanationReport) (*models.OptimizedCV, error) {
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
	explanationJSON, err := json.MarshalIndent(explanation, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize explanation: %w", err)
	}

	prompt := r.promptBuilder.BuildRewritePrompt(string(cvJSON), string(jobJSON), string(explanationJSON))

	var optimized models.OptimizedCV
	if err := generateStructured(ctx, r.gemini, prompt, 0.3, &optimized); err != nil {
		return nil, fmt.Errorf("failed to rewrite CV: %w", err)
	}

	if optimized.Sections == nil {
		optimized.Sections = []models.CVSection{}
	}
	for i := range optimized.Sections {
		optimized.Sections[i].SectionType = models.ParseSectionType(string(optimized.Sections[i].SectionType))
	}
	if optimized.ChangesSummary == nil {
		optimized.ChangesSummary = []string{}
	}

	log.Printf("✍️  Rewrite ready: %d sections, %d changes\n", len(optimized.Sections), len(optimized.ChangesSummary))
	return &optimized, nil
}
