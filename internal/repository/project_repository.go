package repository

import (
	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	DB *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

func (r *ProjectRepository) Create(project *model.Project) error {
	return r.DB.Create(project).Error
}

func (r *ProjectRepository) FindByID(id string) (*model.Project, error) {
	var project model.Project
	err := r.DB.Where("id = ?", id).First(&project).Error
	return &project, err
}

func (r *ProjectRepository) ListByUser(userID uint, search string, page, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	query := r.DB.Model(&model.Project{}).Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("updated_at desc").Offset(offset).Limit(limit).Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepository) Update(project *model.Project) error {
	return r.DB.Save(project).Error
}

// Delete permanently removes the project together with its studies,
// assessments and export history, so dashboard counts and unique indexes
// never see leftover rows.
func (r *ProjectRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var studyIDs []uint
		if err := tx.Model(&model.Study{}).
			Where("project_id = ?", id).
			Pluck("id", &studyIDs).Error; err != nil {
			return err
		}
		if len(studyIDs) > 0 {
			var assessmentIDs []uint
			if err := tx.Model(&model.Assessment{}).
				Where("study_id IN ?", studyIDs).
				Pluck("id", &assessmentIDs).Error; err != nil {
				return err
			}
			if err := deleteAssessmentTrees(tx, assessmentIDs); err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", studyIDs).
				Delete(&model.Study{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("project_id = ?", id).
			Delete(&model.AssessmentExport{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&model.Project{}).Error
	})
}

// Touch bumps the project's updated_at so list ordering reflects recent
// assessment activity.
func (r *ProjectRepository) Touch(id string) error {
	return r.DB.Model(&model.Project{}).Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *ProjectRepository) CountStudies(projectID string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Study{}).Where("project_id = ?", projectID).Count(&total).Error
	return total, err
}

func (r *ProjectRepository) CountByUser(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Project{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *ProjectRepository) CountStudiesByUser(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Study{}).
		Joins("JOIN projects ON projects.id = studies.project_id").
		Where("projects.user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (r *ProjectRepository) CountAssessmentsByStatus(projectID string) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.DB.Model(&model.Assessment{}).
		Select("assessments.status AS status, COUNT(*) AS total").
		Joins("JOIN studies ON studies.id = assessments.study_id").
		Where("studies.project_id = ?", projectID).
		Group("assessments.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}
