package repository

import (
	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/gorm"
)

type ExportRepository struct {
	DB *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{DB: db}
}

func (r *ExportRepository) Create(export *model.AssessmentExport) error {
	return r.DB.Create(export).Error
}

func (r *ExportRepository) ListByProject(projectID string) ([]model.AssessmentExport, error) {
	var exports []model.AssessmentExport
	err := r.DB.Where("project_id = ?", projectID).Order("created_at desc").Find(&exports).Error
	return exports, err
}
