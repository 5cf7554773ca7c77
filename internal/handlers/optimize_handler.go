package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-optimizer/internal/models"
	"alfredoptarigan/cv-optimizer/internal/repositories"
	"alfredoptarigan/cv-optimizer/internal/services"
)

type OptimizeHandler struct {
	runRepo repositories.RunRepository
	docRepo repositories.DocumentRepository
	worker  services.Worker
}

func NewOptimizeHandler(
	runRepo repositories.RunRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
) *OptimizeHandler {
	return &OptimizeHandler{
		runRepo: runRepo,
		docRepo: docRepo,
		worker:  worker,
	}
}

// HandleOptimize handles POST /optimize
func (h *OptimizeHandler) HandleOptimize(c *fiber.Ctx) error {
	var req models.OptimizeRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.CVDocumentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv_document_id is required",
		})
	}

	hasJobText := strings.TrimSpace(req.JobText) != ""
	if req.JobDocumentID == "" && !hasJobText {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "either job_document_id or job_text is required",
		})
	}
	if req.JobDocumentID != "" && hasJobText {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "provide job_document_id or job_text, not both",
		})
	}

	// Parse UUIDs
	cvDocID, err := uuid.Parse(req.CVDocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid cv_document_id format",
		})
	}

	// Verify documents exist
	if _, err := h.docRepo.FindByID(cvDocID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "CV document not found",
		})
	}

	var jobDocID *uuid.UUID
	if req.JobDocumentID != "" {
		parsed, err := uuid.Parse(req.JobDocumentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid job_document_id format",
			})
		}

		if _, err := h.docRepo.FindByID(parsed); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job document not found",
			})
		}
		jobDocID = &parsed
	}

	// Create run record
	run := &models.PipelineRun{
		ID:            uuid.New(),
		CVDocumentID:  cvDocID,
		JobDocumentID: jobDocID,
		Status:        models.StatusQueued,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if hasJobText {
		run.JobText = &req.JobText
	}

	if err := h.runRepo.Create(run); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create optimization run",
		})
	}

	// Enqueue run to worker
	h.worker.EnqueueRun(run.ID)

	// Return run ID immediately
	return c.Status(fiber.StatusAccepted).JSON(models.OptimizeResponse{
		ID:     run.ID.String(),
		Status: string(models.StatusQueued),
	})
}
