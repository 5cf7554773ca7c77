package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/cv-optimizer/internal/models"
	"alfredoptarigan/cv-optimizer/internal/repositories"
)

type PipelineService interface {
	// Run executes the full pipeline for a queued run, persisting stage
	// transitions and the final report.
	Run(ctx context.Context, runID uuid.UUID) error
	// Optimize executes the pipeline over raw text without touching the
	// database.
	Optimize(ctx context.Context, cvText, jobText string) (*models.PipelineResult, error)
	// Compare re-validates and re-scores an already rewritten CV.
	Compare(ctx context.Context, req *models.CompareRequest) (*models.PipelineResult, error)
}

type pipelineService struct {
	runRepo   repositories.RunRepository
	docRepo   repositories.DocumentRepository
	extractor ExtractorService
	parser    ParserService
	matcher   MatcherService
	explainer ExplainerService
	rewriter  RewriterService
	validator ValidatorService
	rescorer  RescorerService
	reporter  ReporterService
}

func NewPipelineService(
	runRepo repositories.RunRepository,
	docRepo repositories.DocumentRepository,
	extractor ExtractorService,
	parser ParserService,
	matcher MatcherService,
	explainer ExplainerService,
	rewriter RewriterService,
	validator ValidatorService,
	rescorer RescorerService,
	reporter ReporterService,
) PipelineService {
	return &pipelineService{
		runRepo:   runRepo,
		docRepo:   docRepo,
		extractor: extractor,
		parser:    parser,
		matcher:   matcher,
		explainer: explainer,
		rewriter:  rewriter,
		validator: validator,
		rescorer:  rescorer,
		reporter:  reporter,
	}
}

// stageSequence is the only legal order of pipeline stages. The machine
// moves strictly forward, one stage at a time; a failed stage fails the
// run rather than being retried or skipped.
var stageSequence = []models.PipelineStage{
	models.StageExtracted,
	models.StageParsed,
	models.StageMatched,
	models.StageExplained,
	models.StageRewritten,
	models.StageValidated,
	models.StageRescored,
	models.StageReported,
}

type pipelineState struct {
	current  models.PipelineStage
	progress func(models.PipelineStage)
}

func newPipelineState(progress func(models.PipelineStage)) *pipelineState {
	return &pipelineState{progress: progress}
}

func (s *pipelineState) successor() (models.PipelineStage, bool) {
	if s.current == "" {
		return stageSequence[0], true
	}
	for i, stage := range stageSequence {
		if stage == s.current {
			if i+1 < len(stageSequence) {
				return stageSequence[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// advance moves the machine to the named stage. Only the immediate
// successor of the current stage is legal.
func (s *pipelineState) advance(to models.PipelineStage) error {
	expected, ok := s.successor()
	if !ok || to != expected {
		return errStageSequence(s.current, to)
	}
	s.current = to
	if s.progress != nil {
		s.progress(to)
	}
	return nil
}

func (p *pipelineService) Run(ctx context.Context, runID uuid.UUID) error {
	// Update status to processing
	if err := p.runRepo.UpdateStatus(runID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting optimization run %s\n", runID)

	run, err := p.runRepo.FindByID(runID)
	if err != nil {
		p.runRepo.UpdateError(runID, err.Error())
		return fmt.Errorf("failed to get run: %w", err)
	}

	cvDoc, err := p.docRepo.FindByID(run.CVDocumentID)
	if err != nil {
		p.runRepo.UpdateError(runID, fmt.Sprintf("CV document not found: %v", err))
		return fmt.Errorf("failed to get CV document: %w", err)
	}

	log.Println("📄 Extracting CV text...")
	cvText, err := p.extractor.ExtractFile(cvDoc.FilePath)
	if err != nil {
		err = stageError(models.StageExtracted, err)
		p.runRepo.UpdateError(runID, err.Error())
		return fmt.Errorf("failed to extract CV: %w", err)
	}

	jobText, err := p.resolveJobText(run)
	if err != nil {
		p.runRepo.UpdateError(runID, err.Error())
		return err
	}

	result, err := p.optimize(ctx, cvText, jobText, func(stage models.PipelineStage) {
		if err := p.runRepo.UpdateStage(runID, stage); err != nil {
			log.Printf("⚠️ Failed to record stage %s: %v\n", stage, err)
		}
	})
	if err != nil {
		p.runRepo.UpdateError(runID, err.Error())
		return fmt.Errorf("pipeline failed: %w", err)
	}

	log.Println("💾 Saving optimization report...")
	payload, err := json.Marshal(result)
	if err != nil {
		p.runRepo.UpdateError(runID, err.Error())
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	if err := p.runRepo.UpdateResult(runID, string(payload)); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	log.Printf("✅ Optimization run %s completed\n", runID)
	return nil
}

// resolveJobText prefers pasted job text over an uploaded job document.
func (p *pipelineService) resolveJobText(run *models.PipelineRun) (string, error) {
	if run.JobText != nil && strings.TrimSpace(*run.JobText) != "" {
		return *run.JobText, nil
	}

	if run.JobDocumentID == nil {
		return "", fmt.Errorf("run has neither job text nor a job document")
	}

	jobDoc, err := p.docRepo.FindByID(*run.JobDocumentID)
	if err != nil {
		return "", fmt.Errorf("job document not found: %w", err)
	}

	log.Println("📄 Extracting job description text...")
	jobText, err := p.extractor.ExtractFile(jobDoc.FilePath)
	if err != nil {
		return "", stageError(models.StageExtracted, err)
	}

	return jobText, nil
}

func (p *pipelineService) Optimize(ctx context.Context, cvText, jobText string) (*models.PipelineResult, error) {
	return p.optimize(ctx, cvText, jobText, nil)
}

// optimize walks the eight pipeline stages over raw CV and job text.
// progress, when non-nil, is notified after each stage is entered.
func (p *pipelineService) optimize(ctx context.Context, cvText, jobText string, progress func(models.PipelineStage)) (*models.PipelineResult, error) {
	st := newPipelineState(progress)

	// Raw text in hand means extraction is already done; file handling
	// happens upstream in Run or in the extract endpoint.
	if err := st.advance(models.StageExtracted); err != nil {
		return nil, err
	}

	log.Println("🧩 Parsing CV and job description...")
	cv, err := p.parser.ParseCV(ctx, cvText)
	if err != nil {
		return nil, stageError(models.StageParsed, err)
	}

	job, err := p.parser.NormalizeJob(ctx, jobText)
	if err != nil {
		return nil, stageError(models.StageParsed, err)
	}
	if err := st.advance(models.StageParsed); err != nil {
		return nil, err
	}

	log.Println("🎯 Scoring CV against the job...")
	score, err := p.matcher.Match(ctx, cv, job)
	if err != nil {
		return nil, stageError(models.StageMatched, err)
	}
	if err := st.advance(models.StageMatched); err != nil {
		return nil, err
	}

	log.Println("💡 Explaining mismatches...")
	explanation, err := p.explainer.Explain(ctx, cv, job, score)
	if err != nil {
		return nil, stageError(models.StageExplained, err)
	}
	if err := st.advance(models.StageExplained); err != nil {
		return nil, err
	}

	log.Println("✍️ Rewriting CV for the job...")
	optimized, err := p.rewriter.Rewrite(ctx, cv, job, explanation)
	if err != nil {
		return nil, stageError(models.StageRewritten, err)
	}
	if err := st.advance(models.StageRewritten); err != nil {
		return nil, err
	}

	validation := p.validator.Validate(cv, optimized)
	if !validation.Passed {
		log.Printf("⚠️ Validation flagged %d violation(s), annotating the report\n", len(validation.Violations))
	}
	if err := st.advance(models.StageValidated); err != nil {
		return nil, err
	}

	view := p.rescorer.BuildView(cv, optimized)
	improved, err := p.rescorer.Rescore(ctx, view, job, score)
	if err != nil {
		return nil, stageError(models.StageRescored, err)
	}
	if err := st.advance(models.StageRescored); err != nil {
		return nil, err
	}

	report := p.reporter.BuildReport(ctx, improved, explanation, optimized)
	if err := st.advance(models.StageReported); err != nil {
		return nil, err
	}

	return &models.PipelineResult{
		Report:     *report,
		Validation: *validation,
	}, nil
}

func (p *pipelineService) Compare(ctx context.Context, req *models.CompareRequest) (*models.PipelineResult, error) {
	if req.OriginalCV == nil || req.OptimizedCV == nil || req.Job == nil {
		return nil, fmt.Errorf("original_cv, optimized_cv and job are required")
	}

	validation := p.validator.Validate(req.OriginalCV, req.OptimizedCV)
	if !validation.Passed {
		log.Printf("⚠️ Validation flagged %d violation(s), annotating the report\n", len(validation.Violations))
	}

	view := req.OptimizedCVView
	if view == nil {
		view = p.rescorer.BuildView(req.OriginalCV, req.OptimizedCV)
	}

	improved, err := p.rescorer.Rescore(ctx, view, req.Job, req.OriginalScore)
	if err != nil {
		return nil, stageError(models.StageRescored, err)
	}

	explanation := req.Explanation
	if explanation == nil {
		explanation = &models.ExplanationReport{Mismatches: []models.Mismatch{}}
	}

	report := p.reporter.BuildReport(ctx, improved, explanation, req.OptimizedCV)

	return &models.PipelineResult{
		Report:     *report,
		Validation: *validation,
	}, nil
}
