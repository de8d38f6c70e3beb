package repository

import (
	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/gorm"
)

type StudyRepository struct {
	DB *gorm.DB
}

func NewStudyRepository(db *gorm.DB) *StudyRepository {
	return &StudyRepository{DB: db}
}

func (r *StudyRepository) Create(study *model.Study) error {
	return r.DB.Create(study).Error
}

func (r *StudyRepository) FindByID(id uint) (*model.Study, error) {
	var study model.Study
	err := r.DB.First(&study, id).Error
	return &study, err
}

func (r *StudyRepository) ListByProject(projectID, search string, page, limit int) ([]model.Study, int64, error) {
	var studies []model.Study
	var total int64

	query := r.DB.Model(&model.Study{}).Where("project_id = ?", projectID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR authors LIKE ? OR journal LIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&studies).Error
	return studies, total, err
}

func (r *StudyRepository) ListAllByProject(projectID string) ([]model.Study, error) {
	var studies []model.Study
	err := r.DB.Where("project_id = ?", projectID).Order("title asc").Find(&studies).Error
	return studies, err
}

func (r *StudyRepository) Update(study *model.Study) error {
	return r.DB.Save(study).Error
}

// Delete permanently removes the study and every assessment under it, so the
// same title can be re-added to the project later despite the unique
// (project_id, title) index.
func (r *StudyRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var assessmentIDs []uint
		if err := tx.Model(&model.Assessment{}).
			Where("study_id = ?", id).
			Pluck("id", &assessmentIDs).Error; err != nil {
			return err
		}
		if err := deleteAssessmentTrees(tx, assessmentIDs); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Study{}, id).Error
	})
}
