package service

import (
	"sort"

	"github.com/choxos/robass-backend/internal/engine"
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/util"

	"gorm.io/gorm"
)

type AssessmentService struct {
	AssessmentRepo *repository.AssessmentRepository
	StudyRepo      *repository.StudyRepository
	ProjectRepo    *repository.ProjectRepository
	ToolRepo       *repository.ToolRepository
}

func NewAssessmentService(assessmentRepo *repository.AssessmentRepository, studyRepo *repository.StudyRepository, projectRepo *repository.ProjectRepository, toolRepo *repository.ToolRepository) *AssessmentService {
	return &AssessmentService{
		AssessmentRepo: assessmentRepo,
		StudyRepo:      studyRepo,
		ProjectRepo:    projectRepo,
		ToolRepo:       toolRepo,
	}
}

// EvaluationResult is the outcome of running a judgement engine, keyed by
// catalog domain id.
type EvaluationResult struct {
	Domains map[uint]engine.Judgement `json:"domains"`
	Overall *engine.Judgement         `json:"overall,omitempty"`
}

// Load fetches an assessment and enforces that the caller owns the project
// it belongs to. Admins can read any assessment.
func (s *AssessmentService) Load(id uint, claims *util.Claims) (*model.Assessment, error) {
	a, err := s.AssessmentRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrAssessmentNotFound
	} else if err != nil {
		return nil, err
	}

	study, err := s.StudyRepo.FindByID(a.StudyID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	project, err := s.ProjectRepo.FindByID(study.ProjectID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if project.UserID != claims.UserID && claims.Role != model.Admin {
		return nil, util.ErrAssessmentNotFound
	}
	return a, nil
}

// Create starts an assessment of a study with a tool and fans out one
// DomainAssessment per catalog domain. Creating the same (study, tool) pair
// twice returns the existing assessment instead of failing.
func (s *AssessmentService) Create(claims *util.Claims, studyID, toolID uint, assessorName, assessorEmail string) (*model.Assessment, bool, error) {
	study, err := s.StudyRepo.FindByID(studyID)
	if err == gorm.ErrRecordNotFound {
		return nil, false, util.ErrStudyNotFound
	} else if err != nil {
		return nil, false, err
	}
	project, err := s.ProjectRepo.FindByID(study.ProjectID)
	if err != nil {
		return nil, false, err
	}
	if project.UserID != claims.UserID && claims.Role != model.Admin {
		return nil, false, util.ErrStudyNotFound
	}

	tool, err := s.ToolRepo.FindByID(toolID)
	if err == gorm.ErrRecordNotFound {
		return nil, false, util.ErrToolNotFound
	} else if err != nil {
		return nil, false, err
	}

	if existing, err := s.AssessmentRepo.FindByStudyAndTool(studyID, toolID); err == nil {
		return existing, false, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	a := &model.Assessment{
		StudyID:       studyID,
		ToolID:        toolID,
		AssessorName:  assessorName,
		AssessorEmail: assessorEmail,
		Status:        model.StatusDraft,
	}

	err = s.AssessmentRepo.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		for _, domain := range tool.Domains {
			da := model.DomainAssessment{
				AssessmentID: a.ID,
				DomainID:     domain.ID,
			}
			if err := tx.Create(&da).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// GetDetail loads the full questionnaire tree, domains in catalog order.
func (s *AssessmentService) GetDetail(id uint, claims *util.Claims) (*model.Assessment, error) {
	if _, err := s.Load(id, claims); err != nil {
		return nil, err
	}

	a, err := s.AssessmentRepo.FindDetail(id)
	if err != nil {
		return nil, err
	}

	sort.Slice(a.Domains, func(i, j int) bool {
		di, dj := a.Domains[i].Domain, a.Domains[j].Domain
		if di == nil || dj == nil {
			return a.Domains[i].DomainID < a.Domains[j].DomainID
		}
		return di.Order < dj.Order
	})
	return a, nil
}

func (s *AssessmentService) ListByStudy(studyID uint, claims *util.Claims) ([]model.Assessment, error) {
	study, err := s.StudyRepo.FindByID(studyID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrStudyNotFound
	} else if err != nil {
		return nil, err
	}
	project, err := s.ProjectRepo.FindByID(study.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != claims.UserID && claims.Role != model.Admin {
		return nil, util.ErrStudyNotFound
	}
	return s.AssessmentRepo.ListByStudy(studyID)
}

// Update changes status, assessor snapshot and notes.
func (s *AssessmentService) Update(id uint, claims *util.Claims, status, assessorName, assessorEmail, notes string) (*model.Assessment, error) {
	a, err := s.Load(id, claims)
	if err != nil {
		return nil, err
	}

	if status != "" {
		switch status {
		case model.StatusDraft, model.StatusCompleted, model.StatusReviewed:
			a.Status = status
		default:
			return nil, util.ErrInvalidStatus
		}
	}
	if assessorName != "" {
		a.AssessorName = assessorName
	}
	if assessorEmail != "" {
		a.AssessorEmail = assessorEmail
	}
	a.Notes = notes

	if err := s.AssessmentRepo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Delete(id uint, claims *util.Claims) error {
	if _, err := s.Load(id, claims); err != nil {
		return err
	}
	return s.AssessmentRepo.Delete(id)
}

// SetJudgement upserts the manual bias judgement for one domain.
func (s *AssessmentService) SetJudgement(id, domainID uint, claims *util.Claims, biasRating, rationale string) (*model.DomainAssessment, error) {
	a, err := s.Load(id, claims)
	if err != nil {
		return nil, err
	}
	if !model.ValidBiasRating(biasRating) {
		return nil, util.ErrInvalidBiasRating
	}

	domain, err := s.ToolRepo.FindDomain(domainID)
	if err == gorm.ErrRecordNotFound || (err == nil && domain.ToolID != a.ToolID) {
		return nil, util.ErrDomainNotFound
	} else if err != nil {
		return nil, err
	}

	da, err := s.AssessmentRepo.FindDomainAssessment(id, domainID)
	if err == gorm.ErrRecordNotFound {
		da = &model.DomainAssessment{AssessmentID: id, DomainID: domainID}
		if err := s.AssessmentRepo.CreateDomainAssessment(da); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	da.BiasRating = biasRating
	da.Rationale = rationale
	if err := s.AssessmentRepo.UpdateDomainAssessment(da); err != nil {
		return nil, err
	}
	if err := s.AssessmentRepo.Touch(id); err != nil {
		return nil, err
	}
	return da, nil
}

// Evaluate runs the judgement algorithm for the assessment's tool over the
// saved responses and persists the resulting ratings.
func (s *AssessmentService) Evaluate(id uint, claims *util.Claims) (*EvaluationResult, error) {
	a, err := s.Load(id, claims)
	if err != nil {
		return nil, err
	}
	tool, err := s.ToolRepo.FindByID(a.ToolID)
	if err != nil {
		return nil, err
	}

	das, err := s.AssessmentRepo.ListDomainAssessments(id)
	if err != nil {
		return nil, err
	}

	switch tool.Name {
	case model.ToolRoB2Parallel:
		return s.evaluateRoB2(a, das)
	case model.ToolROBINSE:
		return s.evaluateROBINSE(a, das)
	default:
		return nil, util.ErrEngineUnsupported
	}
}

func (s *AssessmentService) evaluateRoB2(a *model.Assessment, das []model.DomainAssessment) (*EvaluationResult, error) {
	answers := make(map[int][]engine.Answer)
	byOrder := make(map[int]*model.DomainAssessment)

	for i := range das {
		da := &das[i]
		if da.Domain == nil || da.Domain.IsOverall {
			continue
		}
		byOrder[da.Domain.Order] = da

		responses := append([]model.QuestionResponse(nil), da.Responses...)
		sort.Slice(responses, func(i, j int) bool {
			qi, qj := responses[i].Question, responses[j].Question
			if qi == nil || qj == nil {
				return responses[i].QuestionID < responses[j].QuestionID
			}
			return qi.Order < qj.Order
		})

		var domainAnswers []engine.Answer
		for _, resp := range responses {
			if resp.Response == "" {
				continue
			}
			answer, err := engine.AnswerFromResponse(resp.Response)
			if err != nil {
				return nil, err
			}
			domainAnswers = append(domainAnswers, answer)
		}
		answers[da.Domain.Order] = domainAnswers
	}

	result, err := engine.EvaluateRoB2(answers)
	if err != nil {
		return nil, err
	}

	out := &EvaluationResult{Domains: make(map[uint]engine.Judgement)}
	for order, judgement := range result.Domains {
		da := byOrder[order]
		if da == nil {
			continue
		}
		da.BiasRating = string(judgement.Risk)
		da.Rationale = judgement.Rationale
		if err := s.AssessmentRepo.UpdateDomainAssessment(da); err != nil {
			return nil, err
		}
		out.Domains[da.DomainID] = judgement
	}

	if result.Overall != nil {
		a.OverallBias = string(result.Overall.Risk)
		if err := s.AssessmentRepo.Update(a); err != nil {
			return nil, err
		}
		out.Overall = result.Overall
	} else if err := s.AssessmentRepo.Touch(a.ID); err != nil {
		return nil, err
	}
	return out, nil
}

// evaluateROBINSE runs the domain algorithms over the saved responses. A
// domain with a complete answer set is judged by its algorithm and the
// computed rating replaces any manual one; a domain with an unfinished
// questionnaire falls back to its manual rating. Once all seven domains
// carry a rating they roll into the overall judgement stored on the
// dedicated overall domain.
func (s *AssessmentService) evaluateROBINSE(a *model.Assessment, das []model.DomainAssessment) (*EvaluationResult, error) {
	answers := make(map[int][]engine.Answer)
	byOrder := make(map[int]*model.DomainAssessment)
	var overallDA *model.DomainAssessment

	for i := range das {
		da := &das[i]
		if da.Domain == nil {
			continue
		}
		if da.Domain.IsOverall {
			overallDA = da
			continue
		}
		byOrder[da.Domain.Order] = da

		responses := append([]model.QuestionResponse(nil), da.Responses...)
		sort.Slice(responses, func(i, j int) bool {
			qi, qj := responses[i].Question, responses[j].Question
			if qi == nil || qj == nil {
				return responses[i].QuestionID < responses[j].QuestionID
			}
			return qi.Order < qj.Order
		})

		var domainAnswers []engine.Answer
		for _, resp := range responses {
			if resp.Response == "" {
				continue
			}
			answer, err := engine.AnswerFromResponse(resp.Response)
			if err != nil {
				return nil, err
			}
			domainAnswers = append(domainAnswers, answer)
		}
		answers[da.Domain.Order] = domainAnswers
	}

	result, err := engine.EvaluateROBINSE(answers)
	if err != nil {
		return nil, err
	}

	out := &EvaluationResult{Domains: make(map[uint]engine.Judgement)}
	var risks [engine.ROBINSEDomains]engine.Risk
	for order := 1; order <= engine.ROBINSEDomains; order++ {
		da := byOrder[order]
		if da == nil {
			return nil, util.ErrIncompleteJudgements
		}

		if judgement, ok := result.Domains[order]; ok {
			da.BiasRating = string(judgement.Risk)
			da.Rationale = judgement.Rationale
			if err := s.AssessmentRepo.UpdateDomainAssessment(da); err != nil {
				return nil, err
			}
			out.Domains[da.DomainID] = judgement
			risks[order-1] = judgement.Risk
			continue
		}
		if da.BiasRating == "" {
			return nil, util.ErrIncompleteJudgements
		}
		risks[order-1] = engine.Risk(da.BiasRating)
	}

	overall, err := engine.OverallROBINSE(risks)
	if err != nil {
		return nil, err
	}

	if overallDA != nil {
		overallDA.BiasRating = string(overall.Risk)
		overallDA.Rationale = overall.Rationale
		if err := s.AssessmentRepo.UpdateDomainAssessment(overallDA); err != nil {
			return nil, err
		}
		out.Domains[overallDA.DomainID] = overall
	}
	a.OverallBias = string(overall.Risk)
	if err := s.AssessmentRepo.Update(a); err != nil {
		return nil, err
	}
	out.Overall = &overall
	return out, nil
}

// DashboardStats summarises a reviewer's workload.
type DashboardStats struct {
	ProjectCount      int64              `json:"projectCount"`
	StudyCount        int64              `json:"studyCount"`
	AssessmentCount   int64              `json:"assessmentCount"`
	CompletedCount    int64              `json:"completedCount"`
	RecentAssessments []model.Assessment `json:"recentAssessments"`
}

func (s *AssessmentService) Dashboard(userID uint) (*DashboardStats, error) {
	projects, err := s.ProjectRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	studies, err := s.ProjectRepo.CountStudiesByUser(userID)
	if err != nil {
		return nil, err
	}
	assessments, err := s.AssessmentRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.AssessmentRepo.CountByUserAndStatus(userID, model.StatusCompleted, model.StatusReviewed)
	if err != nil {
		return nil, err
	}
	recent, err := s.AssessmentRepo.ListRecentByUser(userID, 5)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		ProjectCount:      projects,
		StudyCount:        studies,
		AssessmentCount:   assessments,
		CompletedCount:    completed,
		RecentAssessments: recent,
	}, nil
}
