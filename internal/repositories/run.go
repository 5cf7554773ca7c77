package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-optimizer/internal/models"
)

type RunRepository interface {
	Create(run *models.PipelineRun) error
	FindByID(id uuid.UUID) (*models.PipelineRun, error)
	UpdateStatus(id uuid.UUID, status models.RunStatus) error
	UpdateStage(id uuid.UUID, stage models.PipelineStage) error
	UpdateResult(id uuid.UUID, resultJSON string) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingRuns(limit int) ([]models.PipelineRun, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(run *models.PipelineRun) error {
	if err := r.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *runRepository) FindByID(id uuid.UUID) (*models.PipelineRun, error) {
	var run models.PipelineRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("run not found")
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return &run, nil
}

func (r *runRepository) UpdateStatus(id uuid.UUID, status models.RunStatus) error {
	result := r.db.Model(&models.PipelineRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found")
	}

	return nil
}

func (r *runRepository) UpdateStage(id uuid.UUID, stage models.PipelineStage) error {
	result := r.db.Model(&models.PipelineRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage":      stage,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update stage: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found")
	}

	return nil
}

func (r *runRepository) UpdateResult(id uuid.UUID, resultJSON string) error {
	result := r.db.Model(&models.PipelineRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.StatusCompleted,
			"result":     resultJSON,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found")
	}

	return nil
}

func (r *runRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.PipelineRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found")
	}

	return nil
}

func (r *runRepository) FindPendingRuns(limit int) ([]models.PipelineRun, error) {
	var runs []models.PipelineRun
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending runs: %w", err)
	}

	return runs, nil
}
