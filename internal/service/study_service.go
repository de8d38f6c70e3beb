package service

import (
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"

	"gorm.io/gorm"
)

type StudyService struct {
	StudyRepo   *repository.StudyRepository
	ProjectRepo *repository.ProjectRepository
}

func NewStudyService(studyRepo *repository.StudyRepository, projectRepo *repository.ProjectRepository) *StudyService {
	return &StudyService{
		StudyRepo:   studyRepo,
		ProjectRepo: projectRepo,
	}
}

// authorizeProject loads the study's project and checks ownership.
func (s *StudyService) authorizeProject(projectID string, claims *util.Claims) error {
	project, err := s.ProjectRepo.FindByID(projectID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrProjectNotFound
	} else if err != nil {
		return err
	}
	if project.UserID != claims.UserID && claims.Role != model.Admin {
		return util.ErrProjectNotFound
	}
	return nil
}

func (s *StudyService) Create(claims *util.Claims, study *model.Study) error {
	if err := s.authorizeProject(study.ProjectID, claims); err != nil {
		return err
	}
	return s.StudyRepo.Create(study)
}

func (s *StudyService) Get(id uint, claims *util.Claims) (*model.Study, error) {
	study, err := s.StudyRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrStudyNotFound
	} else if err != nil {
		return nil, err
	}
	if err := s.authorizeProject(study.ProjectID, claims); err != nil {
		return nil, err
	}
	return study, nil
}

func (s *StudyService) List(projectID string, claims *util.Claims, search string, page, limit int) ([]model.Study, int64, error) {
	if err := s.authorizeProject(projectID, claims); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.StudyRepo.ListByProject(projectID, search, page, limit)
}

func (s *StudyService) Update(id uint, claims *util.Claims, updated *model.Study) (*model.Study, error) {
	study, err := s.Get(id, claims)
	if err != nil {
		return nil, err
	}

	study.Title = updated.Title
	study.Authors = updated.Authors
	study.Journal = updated.Journal
	study.Year = updated.Year
	study.DOI = updated.DOI
	study.PMID = updated.PMID
	study.StudyDesign = updated.StudyDesign
	study.Notes = updated.Notes

	if err := s.StudyRepo.Update(study); err != nil {
		return nil, err
	}
	return study, nil
}

func (s *StudyService) Delete(id uint, claims *util.Claims) error {
	if _, err := s.Get(id, claims); err != nil {
		return err
	}
	return s.StudyRepo.Delete(id)
}
