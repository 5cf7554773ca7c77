package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/cv-optimizer/internal/models"
	"alfredoptarigan/cv-optimizer/internal/repositories"
	"alfredoptarigan/cv-optimizer/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File

	var responses []models.UploadResponse

	for _, fileType := range []string{"cv", "job"} {
		uploads, exists := files[fileType]
		if !exists || len(uploads) == 0 {
			continue
		}
		file := uploads[0]

		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("%s file too large. Max size: %d bytes", fileType, h.maxFileSize),
			})
		}

		// Save file
		filename, filePath, err := h.storageService.SaveFile(file, fileType)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save %s file: %v", fileType, err),
			})
		}

		// Create document record
		doc := models.Document{
			ID:               uuid.New(),
			Filename:         filename,
			OriginalFileName: file.Filename,
			FileType:         fileType,
			FilePath:         filePath,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}

		if err := h.docRepo.Create(&doc); err != nil {
			// Cleanup uploaded file if database insert fails
			h.storageService.DeleteFile(filename)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save %s document record: %v", fileType, err),
			})
		}

		responses = append(responses, models.UploadResponse{
			ID:           doc.ID.String(),
			Filename:     doc.Filename,
			OriginalName: doc.OriginalFileName,
			FileType:     doc.FileType,
		})
	}

	if len(responses) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid files uploaded. Please upload 'cv' and/or 'job' as PDF, DOCX, TXT or MD files.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Files uploaded successfully",
		"documents": responses,
	})
}
