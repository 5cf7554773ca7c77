package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-optimizer/internal/models"
	"alfredoptarigan/cv-optimizer/internal/repositories"
)

type ResultHandler struct {
	runRepo repositories.RunRepository
}

func NewResultHandler(runRepo repositories.RunRepository) *ResultHandler {
	return &ResultHandler{
		runRepo: runRepo,
	}
}

func (h *ResultHandler) HandleGetRun(c *fiber.Ctx) error {
	// Parse ID from params
	idParam := c.Params("id")
	runID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid run ID format",
		})
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Run not found",
		})
	}

	// Build response based on status
	response := models.RunResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
		Stage:  string(run.Stage),
	}

	// If completed, include the stored report
	if run.Status == models.StatusCompleted && run.Result != nil {
		var result models.PipelineResult
		if err := json.Unmarshal([]byte(*run.Result), &result); err != nil {
			log.Printf("⚠️ Failed to decode stored result for run %s: %v\n", run.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Stored result is corrupted",
			})
		}
		response.Result = &result
	}

	// If failed, include error message
	if run.Status == models.StatusFailed && run.ErrorMessage != nil {
		response.ErrorMessage = run.ErrorMessage
	}

	return c.JSON(response)
}
