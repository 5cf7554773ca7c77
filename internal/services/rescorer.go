package services

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// RescorerService re-runs the matcher against the rewritten CV so the
// before/after comparison uses the exact same scoring path. The view it
// scores is the original CV with only the contact block and sections
// replaced; enrichment fields and raw text stay untouched, because the
// rewrite is not allowed to invent new facts.
type RescorerService interface {
	BuildView(original *models.StructuredCV, optimized *models.OptimizedCV) *models.StructuredCV
	Rescore(ctx context.Context, view *models.StructuredCV, job *models.StructuredJob, originalScore *models.SimilarityScore) (*models.ImprovedScore, error)
}

type rescorerService struct {
	matcher MatcherService
}

func NewRescorerService(matcher MatcherService) RescorerService {
	return &rescorerService{matcher: matcher}
}

// BuildView implements RescorerService.
func (r *rescorerService) BuildView(original *models.StructuredCV, optimized *models.OptimizedCV) *models.StructuredCV {
	view := *original
	view.Contact = optimized.Contact
	view.Sections = optimized.Sections
	return &view
}

// Rescore implements RescorerService.
func (r *rescorerService) Rescore(ctx context.Context, view *models.StructuredCV, job *models.StructuredJob, originalScore *models.SimilarityScore) (*models.ImprovedScore, error) {
	if originalScore == nil {
		return nil, fmt.Errorf("original score is required for rescoring")
	}

	after, err := r.matcher.Match(ctx, view, job)
	if err != nil {
		return nil, fmt.Errorf("failed to rescore optimized CV: %w", err)
	}

	improved := &models.ImprovedScore{
		Before: *originalScore,
		After:  *after,
		Delta:  round4(after.Overall - originalScore.Overall),
	}

	log.Printf("📈 Rescore complete: %.4f -> %.4f (delta %+.4f)", improved.Before.Overall, improved.After.Overall, improved.Delta)
	return improved, nil
}
