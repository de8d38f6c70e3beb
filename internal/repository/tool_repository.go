package repository

import (
	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/gorm"
)

type ToolRepository struct {
	DB *gorm.DB
}

func NewToolRepository(db *gorm.DB) *ToolRepository {
	return &ToolRepository{DB: db}
}

// ListActive returns the active tools with their full questionnaire
// structure, ordered for display.
func (r *ToolRepository) ListActive() ([]model.AssessmentTool, error) {
	var tools []model.AssessmentTool
	err := r.DB.Where("is_active = ?", true).
		Preload("Domains", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Preload("Domains.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Order("id asc").
		Find(&tools).Error
	return tools, err
}

func (r *ToolRepository) FindByID(id uint) (*model.AssessmentTool, error) {
	var tool model.AssessmentTool
	err := r.DB.
		Preload("Domains", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Preload("Domains.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		First(&tool, id).Error
	return &tool, err
}

func (r *ToolRepository) FindByName(name string) (*model.AssessmentTool, error) {
	var tool model.AssessmentTool
	err := r.DB.Where("name = ?", name).First(&tool).Error
	return &tool, err
}

func (r *ToolRepository) ListDomains(toolID uint) ([]model.Domain, error) {
	var domains []model.Domain
	err := r.DB.Where("tool_id = ?", toolID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Order("`order` asc").
		Find(&domains).Error
	return domains, err
}

func (r *ToolRepository) FindDomain(id uint) (*model.Domain, error) {
	var domain model.Domain
	err := r.DB.First(&domain, id).Error
	return &domain, err
}

func (r *ToolRepository) FindQuestion(id uint) (*model.SignallingQuestion, error) {
	var q model.SignallingQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

// CountRequiredQuestions counts the required signalling questions across all
// domains of a tool, the denominator of the progress figure.
func (r *ToolRepository) CountRequiredQuestions(toolID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.SignallingQuestion{}).
		Joins("JOIN domains ON domains.id = signalling_questions.domain_id").
		Where("domains.tool_id = ? AND signalling_questions.is_required = ?", toolID, true).
		Count(&total).Error
	return total, err
}
