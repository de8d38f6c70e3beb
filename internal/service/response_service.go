package service

import (
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"
	"github.com/choxos/robass-backend/pkg/monitoring"

	"gorm.io/gorm"
)

// Update kinds accepted by the auto-save endpoint. Each save targets exactly
// one field of the response row; the other field is left untouched.
const (
	UpdateResponse      = "response"
	UpdateJustification = "justification"
)

// SaveRequest is one tagged auto-save update.
type SaveRequest struct {
	Kind       string `json:"kind" binding:"required"`
	DomainID   uint   `json:"domainId" binding:"required"`
	QuestionID uint   `json:"questionId" binding:"required"`
	Value      string `json:"value"`
}

// Progress is the answered/total state of one assessment.
type Progress struct {
	Answered int64   `json:"answered"`
	Total    int64   `json:"total"`
	Percent  float64 `json:"percent"`
}

// ResponseService implements the auto-save upsert and the progress figure
// derived from it.
type ResponseService struct {
	AssessmentRepo *repository.AssessmentRepository
	ToolRepo       *repository.ToolRepository
	Assessments    *AssessmentService
}

func NewResponseService(assessmentRepo *repository.AssessmentRepository, toolRepo *repository.ToolRepository, assessments *AssessmentService) *ResponseService {
	return &ResponseService{
		AssessmentRepo: assessmentRepo,
		ToolRepo:       toolRepo,
		Assessments:    assessments,
	}
}

// Save validates one tagged update against the tool's catalog and upserts
// the response row, updating only the named field. Last write wins.
func (s *ResponseService) Save(assessmentID uint, claims *util.Claims, req *SaveRequest) error {
	if req.Kind != UpdateResponse && req.Kind != UpdateJustification {
		return util.ErrInvalidUpdateKind
	}
	if req.Kind == UpdateResponse && req.Value != "" && !model.ValidResponse(req.Value) {
		return util.ErrInvalidResponse
	}

	a, err := s.Assessments.Load(assessmentID, claims)
	if err != nil {
		return err
	}

	domain, err := s.ToolRepo.FindDomain(req.DomainID)
	if err == gorm.ErrRecordNotFound || (err == nil && domain.ToolID != a.ToolID) {
		return util.ErrDomainNotFound
	} else if err != nil {
		return err
	}

	question, err := s.ToolRepo.FindQuestion(req.QuestionID)
	if err == gorm.ErrRecordNotFound || (err == nil && question.DomainID != domain.ID) {
		return util.ErrUnknownQuestion
	} else if err != nil {
		return err
	}

	da, err := s.AssessmentRepo.FindDomainAssessment(assessmentID, domain.ID)
	if err == gorm.ErrRecordNotFound {
		da = &model.DomainAssessment{AssessmentID: assessmentID, DomainID: domain.ID}
		if err := s.AssessmentRepo.CreateDomainAssessment(da); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	resp, err := s.AssessmentRepo.FindResponse(da.ID, question.ID)
	if err == gorm.ErrRecordNotFound {
		resp = &model.QuestionResponse{
			DomainAssessmentID: da.ID,
			QuestionID:         question.ID,
		}
		s.apply(resp, req)
		if err := s.AssessmentRepo.CreateResponse(resp); err != nil {
			monitoring.ResponseSaveCounter.WithLabelValues(req.Kind, "error").Inc()
			return err
		}
	} else if err != nil {
		return err
	} else {
		s.apply(resp, req)
		if err := s.AssessmentRepo.UpdateResponse(resp); err != nil {
			monitoring.ResponseSaveCounter.WithLabelValues(req.Kind, "error").Inc()
			return err
		}
	}

	if err := s.AssessmentRepo.Touch(assessmentID); err != nil {
		return err
	}
	monitoring.ResponseSaveCounter.WithLabelValues(req.Kind, "ok").Inc()
	return nil
}

func (s *ResponseService) apply(resp *model.QuestionResponse, req *SaveRequest) {
	switch req.Kind {
	case UpdateResponse:
		resp.Response = req.Value
	case UpdateJustification:
		resp.Justification = req.Value
	}
}

// GetProgress recomputes the progress figure from stored rows. Nothing is
// tracked incrementally, so the figure is always consistent with the data.
func (s *ResponseService) GetProgress(assessmentID uint, claims *util.Claims) (*Progress, error) {
	a, err := s.Assessments.Load(assessmentID, claims)
	if err != nil {
		return nil, err
	}

	total, err := s.ToolRepo.CountRequiredQuestions(a.ToolID)
	if err != nil {
		return nil, err
	}
	answered, err := s.AssessmentRepo.CountAnsweredQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	progress := &Progress{Answered: answered, Total: total}
	if total > 0 {
		progress.Percent = float64(answered) / float64(total) * 100
	}
	return progress, nil
}
