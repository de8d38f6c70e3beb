package repository

import (
	"github.com/choxos/robass-backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Preload("Study").Preload("Tool").First(&a, id).Error
	return &a, err
}

// FindDetail loads an assessment with its full domain and response tree for
// the questionnaire view.
func (r *AssessmentRepository) FindDetail(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.
		Preload("Study").
		Preload("Tool").
		Preload("Domains.Domain").
		Preload("Domains.Responses").
		Preload("Domains.Responses.Question").
		First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) FindByStudyAndTool(studyID, toolID uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.Where("study_id = ? AND tool_id = ?", studyID, toolID).First(&a).Error
	return &a, err
}

func (r *AssessmentRepository) ListByStudy(studyID uint) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.Where("study_id = ?", studyID).Preload("Tool").Order("created_at asc").Find(&as).Error
	return as, err
}

// ListByProject returns every assessment under the project with the
// associations the export and dashboard views need.
func (r *AssessmentRepository) ListByProject(projectID string) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.
		Joins("JOIN studies ON studies.id = assessments.study_id").
		Where("studies.project_id = ?", projectID).
		Preload("Study").
		Preload("Tool").
		Preload("Domains.Domain").
		Preload("Domains.Responses").
		Preload("Domains.Responses.Question").
		Order("assessments.created_at asc").
		Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) CountByUser(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Assessment{}).
		Joins("JOIN studies ON studies.id = assessments.study_id").
		Joins("JOIN projects ON projects.id = studies.project_id").
		Where("projects.user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (r *AssessmentRepository) CountByUserAndStatus(userID uint, statuses ...string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Assessment{}).
		Joins("JOIN studies ON studies.id = assessments.study_id").
		Joins("JOIN projects ON projects.id = studies.project_id").
		Where("projects.user_id = ? AND assessments.status IN ?", userID, statuses).
		Count(&total).Error
	return total, err
}

func (r *AssessmentRepository) ListRecentByUser(userID uint, limit int) ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.
		Joins("JOIN studies ON studies.id = assessments.study_id").
		Joins("JOIN projects ON projects.id = studies.project_id").
		Where("projects.user_id = ?", userID).
		Preload("Study").
		Preload("Tool").
		Order("assessments.updated_at desc").
		Limit(limit).
		Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

// Delete permanently removes the assessment with its domain assessments and
// question responses, freeing the unique (study_id, tool_id) slot for
// re-assessment.
func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteAssessmentTrees(tx, []uint{id})
	})
}

// deleteAssessmentTrees removes assessments and their descendants outright.
// Soft deletion is not used on these tables: the unique indexes on
// (study_id, tool_id) and (domain_assessment_id, question_id) treat
// soft-deleted rows as still present.
func deleteAssessmentTrees(tx *gorm.DB, assessmentIDs []uint) error {
	if len(assessmentIDs) == 0 {
		return nil
	}

	var daIDs []uint
	if err := tx.Model(&model.DomainAssessment{}).
		Where("assessment_id IN ?", assessmentIDs).
		Pluck("id", &daIDs).Error; err != nil {
		return err
	}
	if len(daIDs) > 0 {
		if err := tx.Unscoped().Where("domain_assessment_id IN ?", daIDs).
			Delete(&model.QuestionResponse{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Unscoped().Where("assessment_id IN ?", assessmentIDs).
		Delete(&model.DomainAssessment{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("id IN ?", assessmentIDs).Delete(&model.Assessment{}).Error
}

// Touch bumps updated_at without rewriting the row, used after every
// auto-save so staleness checks work.
func (r *AssessmentRepository) Touch(id uint) error {
	return r.DB.Model(&model.Assessment{}).Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *AssessmentRepository) CreateDomainAssessment(da *model.DomainAssessment) error {
	return r.DB.Create(da).Error
}

func (r *AssessmentRepository) FindDomainAssessment(assessmentID, domainID uint) (*model.DomainAssessment, error) {
	var da model.DomainAssessment
	err := r.DB.Where("assessment_id = ? AND domain_id = ?", assessmentID, domainID).First(&da).Error
	return &da, err
}

func (r *AssessmentRepository) ListDomainAssessments(assessmentID uint) ([]model.DomainAssessment, error) {
	var das []model.DomainAssessment
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Preload("Domain").
		Preload("Responses").
		Preload("Responses.Question").
		Find(&das).Error
	return das, err
}

func (r *AssessmentRepository) UpdateDomainAssessment(da *model.DomainAssessment) error {
	return r.DB.Save(da).Error
}

func (r *AssessmentRepository) FindResponse(domainAssessmentID, questionID uint) (*model.QuestionResponse, error) {
	var resp model.QuestionResponse
	err := r.DB.Where("domain_assessment_id = ? AND question_id = ?", domainAssessmentID, questionID).First(&resp).Error
	return &resp, err
}

func (r *AssessmentRepository) CreateResponse(resp *model.QuestionResponse) error {
	return r.DB.Create(resp).Error
}

func (r *AssessmentRepository) UpdateResponse(resp *model.QuestionResponse) error {
	return r.DB.Save(resp).Error
}

// CountAnsweredQuestions counts responses on required questions that carry a
// non-empty response category, the numerator of the progress figure.
func (r *AssessmentRepository) CountAnsweredQuestions(assessmentID uint) (int64, error) {
	var answered int64
	err := r.DB.Model(&model.QuestionResponse{}).
		Joins("JOIN domain_assessments ON domain_assessments.id = question_responses.domain_assessment_id").
		Joins("JOIN signalling_questions ON signalling_questions.id = question_responses.question_id").
		Where("domain_assessments.assessment_id = ?", assessmentID).
		Where("signalling_questions.is_required = ?", true).
		Where("question_responses.response <> ''").
		Count(&answered).Error
	return answered, err
}
