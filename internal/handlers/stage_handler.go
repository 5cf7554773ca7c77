package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-optimizer/internal/models"
	"alfredoptarigan/cv-optimizer/internal/services"
)

// StageHandler exposes each pipeline stage as its own endpoint so clients
// can run the pipeline step by step instead of queueing a full run.
type StageHandler struct {
	extractor services.ExtractorService
	parser    services.ParserService
	matcher   services.MatcherService
	explainer services.ExplainerService
	rewriter  services.RewriterService
	pipeline  services.PipelineService
}

func NewStageHandler(
	extractor services.ExtractorService,
	parser services.ParserService,
	matcher services.MatcherService,
	explainer services.ExplainerService,
	rewriter services.RewriterService,
	pipeline services.PipelineService,
) *StageHandler {
	return &StageHandler{
		extractor: extractor,
		parser:    parser,
		matcher:   matcher,
		explainer: explainer,
		rewriter:  rewriter,
		pipeline:  pipeline,
	}
}

// respondPipelineError maps pipeline error codes onto HTTP statuses.
func respondPipelineError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch services.ErrorCode(err) {
	case services.CodeExtractionFailed, services.CodeValidationFailed:
		status = fiber.StatusUnprocessableEntity
	case services.CodeEmbeddingUnavailable:
		status = fiber.StatusServiceUnavailable
	case services.CodeLLMResponseInvalid:
		status = fiber.StatusBadGateway
	case services.CodeStageSequenceViolation:
		status = fiber.StatusBadRequest
	}

	payload := fiber.Map{"error": err.Error()}
	if code := services.ErrorCode(err); code != "" {
		payload["code"] = code
	}

	return c.Status(status).JSON(payload)
}

// HandleExtract handles POST /extract
func (h *StageHandler) HandleExtract(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	rawText, err := h.extractor.ExtractBytes(fileHeader.Filename, data)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(models.ExtractResponse{
		Filename: fileHeader.Filename,
		RawText:  rawText,
	})
}

// HandleParseCV handles POST /parse-cv
func (h *StageHandler) HandleParseCV(c *fiber.Ctx) error {
	var req models.ParseCVRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.RawText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "raw_text is required",
		})
	}

	cv, err := h.parser.ParseCV(c.UserContext(), req.RawText)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(cv)
}

// HandleNormalizeJob handles POST /normalize-job
func (h *StageHandler) HandleNormalizeJob(c *fiber.Ctx) error {
	var req models.NormalizeJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.RawText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "raw_text is required",
		})
	}

	job, err := h.parser.NormalizeJob(c.UserContext(), req.RawText)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(job)
}

// HandleMatch handles POST /match
func (h *StageHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	score, err := h.matcher.Match(c.UserContext(), &req.CV, &req.Job)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(score)
}

// HandleExplain handles POST /explain
func (h *StageHandler) HandleExplain(c *fiber.Ctx) error {
	var req models.ExplainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	report, err := h.explainer.Explain(c.UserContext(), &req.CV, &req.Job, &req.Score)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(report)
}

// HandleRewrite handles POST /rewrite
func (h *StageHandler) HandleRewrite(c *fiber.Ctx) error {
	var req models.RewriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	optimized, err := h.rewriter.Rewrite(c.UserContext(), &req.CV, &req.Job, &req.Explanation)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(optimized)
}

// HandleCompare handles POST /compare
func (h *StageHandler) HandleCompare(c *fiber.Ctx) error {
	var req models.CompareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.OriginalCV == nil || req.OptimizedCV == nil || req.Job == nil || req.OriginalScore == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "original_cv, optimized_cv, job and original_score are required",
		})
	}

	result, err := h.pipeline.Compare(c.UserContext(), &req)
	if err != nil {
		return respondPipelineError(c, err)
	}

	return c.JSON(result)
}
