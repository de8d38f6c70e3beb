package service

import (
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"

	"gorm.io/gorm"
)

type ProjectService struct {
	ProjectRepo *repository.ProjectRepository
}

func NewProjectService(projectRepo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{ProjectRepo: projectRepo}
}

// ProjectStats summarises a project for the dashboard view.
type ProjectStats struct {
	StudyCount     int64            `json:"studyCount"`
	AssessmentsBy  map[string]int64 `json:"assessmentsByStatus"`
	TotalCompleted int64            `json:"totalCompleted"`
}

func (s *ProjectService) Create(userID uint, name, description string) (*model.Project, error) {
	project := &model.Project{
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.ProjectRepo.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get loads a project and enforces ownership. Admins can read any project.
func (s *ProjectService) Get(id string, claims *util.Claims) (*model.Project, error) {
	project, err := s.ProjectRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrProjectNotFound
	} else if err != nil {
		return nil, err
	}

	if project.UserID != claims.UserID && claims.Role != model.Admin {
		return nil, util.ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) List(userID uint, search string, page, limit int) ([]model.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.ProjectRepo.ListByUser(userID, search, page, limit)
}

func (s *ProjectService) Update(id string, claims *util.Claims, name, description string) (*model.Project, error) {
	project, err := s.Get(id, claims)
	if err != nil {
		return nil, err
	}

	if name != "" {
		project.Name = name
	}
	project.Description = description
	if err := s.ProjectRepo.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(id string, claims *util.Claims) error {
	if _, err := s.Get(id, claims); err != nil {
		return err
	}
	return s.ProjectRepo.Delete(id)
}

func (s *ProjectService) Stats(id string, claims *util.Claims) (*ProjectStats, error) {
	if _, err := s.Get(id, claims); err != nil {
		return nil, err
	}

	studies, err := s.ProjectRepo.CountStudies(id)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.ProjectRepo.CountAssessmentsByStatus(id)
	if err != nil {
		return nil, err
	}

	return &ProjectStats{
		StudyCount:     studies,
		AssessmentsBy:  byStatus,
		TotalCompleted: byStatus[model.StatusCompleted] + byStatus[model.StatusReviewed],
	}, nil
}
