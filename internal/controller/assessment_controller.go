package controller

import (
	"strconv"

	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
	ResponseService   *service.ResponseService
}

func NewAssessmentController(assessmentService *service.AssessmentService, responseService *service.ResponseService) *AssessmentController {
	return &AssessmentController{
		AssessmentService: assessmentService,
		ResponseService:   responseService,
	}
}

func assessmentID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid assessment id")
		return 0, false
	}
	return uint(id), true
}

// CreateAssessmentRequest defines the create payload.
// swagger:model CreateAssessmentRequest
type CreateAssessmentRequest struct {
	StudyID       uint   `json:"studyId" binding:"required"`
	ToolID        uint   `json:"toolId" binding:"required"`
	AssessorName  string `json:"assessorName"`
	AssessorEmail string `json:"assessorEmail" binding:"omitempty,email"`
}

// Create godoc
// @Summary Start an assessment
// @Description Creates an assessment of a study with a tool; re-posting the same pair returns the existing assessment
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreateAssessmentRequest true "assessment payload"
// @Success 200 {object} util.Response{data=model.Assessment} "already existed"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	var req CreateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	a, created, err := c.AssessmentService.Create(claims, req.StudyID, req.ToolID, req.AssessorName, req.AssessorEmail)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, a)
		return
	}
	util.Success(ctx, a)
}

// Get godoc
// @Summary Assessment detail
// @Description Full questionnaire tree: domains in catalog order with saved responses, the reload/reconciliation read
// @Tags assessments
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	a, err := c.AssessmentService.GetDetail(id, claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// ListByStudy godoc
// @Summary List a study's assessments
// @Tags assessments
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "study id"
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/studies/{id}/assessments [get]
func (c *AssessmentController) ListByStudy(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid study id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	as, err := c.AssessmentService.ListByStudy(uint(id), claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, as)
}

// UpdateAssessmentRequest defines the update payload.
// swagger:model UpdateAssessmentRequest
type UpdateAssessmentRequest struct {
	Status        string `json:"status" binding:"omitempty,oneof=draft completed reviewed"`
	AssessorName  string `json:"assessorName"`
	AssessorEmail string `json:"assessorEmail" binding:"omitempty,email"`
	Notes         string `json:"notes"`
}

// Update godoc
// @Summary Update assessment status and metadata
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path int                     true "assessment id"
// @Param   body body UpdateAssessmentRequest true "update payload"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}

	var req UpdateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	a, err := c.AssessmentService.Update(id, claims, req.Status, req.AssessorName, req.AssessorEmail, req.Notes)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// Delete godoc
// @Summary Delete an assessment
// @Tags assessments
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.AssessmentService.Delete(id, claims); err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SaveResponse godoc
// @Summary Auto-save one response field
// @Description Tagged upsert of a single field of one question's response; the untargeted field is preserved and the last write wins
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path int                 true "assessment id"
// @Param   body body service.SaveRequest true "tagged update"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "validation failure, no state change"
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id}/responses [post]
func (c *AssessmentController) SaveResponse(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}

	var req service.SaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.ResponseService.Save(id, claims, &req); err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"success": true})
}

// GetProgress godoc
// @Summary Assessment progress
// @Description Answered/total over the tool's required questions, recomputed from stored rows on every call
// @Tags assessments
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=service.Progress}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id}/progress [get]
func (c *AssessmentController) GetProgress(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	progress, err := c.ResponseService.GetProgress(id, claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// JudgementRequest defines the manual domain judgement payload.
// swagger:model JudgementRequest
type JudgementRequest struct {
	BiasRating string `json:"biasRating" binding:"required"`
	Rationale  string `json:"rationale"`
}

// SetJudgement godoc
// @Summary Record a manual domain judgement
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id       path int              true "assessment id"
// @Param   domainId path int              true "catalog domain id"
// @Param   body     body JudgementRequest true "judgement payload"
// @Success 200 {object} util.Response{data=model.DomainAssessment}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id}/domains/{domainId}/judgement [put]
func (c *AssessmentController) SetJudgement(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}
	domainID, err := strconv.ParseUint(ctx.Param("domainId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid domain id")
		return
	}

	var req JudgementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	da, err := c.AssessmentService.SetJudgement(id, uint(domainID), claims, req.BiasRating, req.Rationale)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, da)
}

// Evaluate godoc
// @Summary Run the tool's judgement algorithm
// @Description Computes domain and overall judgements from the saved responses and persists them
// @Tags assessments
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "assessment id"
// @Success 200 {object} util.Response{data=service.EvaluationResult}
// @Failure 400 {object} util.Response "tool has no algorithm or judgements incomplete"
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id}/evaluate [post]
func (c *AssessmentController) Evaluate(ctx *gin.Context) {
	id, ok := assessmentID(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.AssessmentService.Evaluate(id, claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
