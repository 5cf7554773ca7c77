package services

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/cv-optimizer/internal/models"
)

// ParserService owns the two parse-time LLM calls: raw CV text to
// StructuredCV, raw job posting to StructuredJob. Enrichment fields are set
// here once and never mutated by later stages.
type ParserService interface {
	ParseCV(ctx context.Context, rawText string) (*models.StructuredCV, error)
	NormalizeJob(ctx context.Context, rawText string) (*models.StructuredJob, error)
}

type parserService struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewParserService(gemini GeminiService) ParserService {
	return &parserService{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// ParseCV implements ParserService.
func (p *parserService) ParseCV(ctx context.Context, rawText string) (*models.StructuredCV, error) {
	if rawText == "" {
		return nil, fmt.Errorf("cannot parse empty CV text")
	}

	prompt := p.promptBuilder.BuildCVParsePrompt(rawText)

	var cv models.StructuredCV
	if err := generateStructured(ctx, p.gemini, prompt, 0.3, &cv); err != nil {
		return nil, fmt.Errorf("failed to parse CV: %w", err)
	}

	// The model's copy of the text is not authoritative
	cv.RawText = rawText

	if cv.Sections == nil {
		cv.Sections = []models.CVSection{}
	}
	for i := range cv.Sections {
		cv.Sections[i].SectionType = models.ParseSectionType(string(cv.Sections[i].SectionType))
	}

	log.Printf("📄 Parsed CV: %d sections, %d hard skills\n", len(cv.Sections), len(cv.HardSkills))
	return &cv, nil
}

// NormalizeJob implements ParserService.
func (p *parserService) NormalizeJob(ctx context.Context, rawText string) (*models.StructuredJob, error) {
	if rawText == "" {
		return nil, fmt.Errorf("cannot normalize empty job text")
	}

	prompt := p.promptBuilder.BuildJobNormalizePrompt(rawText)

	var job models.StructuredJob
	if err := generateStructured(ctx, p.gemini, prompt, 0.3, &job); err != nil {
		return nil, fmt.Errorf("failed to normalize job: %w", err)
	}

	job.RawText = rawText

	log.Printf("📄 Normalized job: %q, %d required skills\n", job.Title, len(job.RequiredSkills))
	return &job, nil
}
