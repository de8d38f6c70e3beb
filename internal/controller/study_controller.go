package controller

import (
	"strconv"

	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudyController struct {
	StudyService *service.StudyService
}

func NewStudyController(studyService *service.StudyService) *StudyController {
	return &StudyController{StudyService: studyService}
}

// StudyRequest defines the create/update payload.
// swagger:model StudyRequest
type StudyRequest struct {
	Title       string `json:"title" binding:"required,max=500"`
	Authors     string `json:"authors"`
	Journal     string `json:"journal"`
	Year        *int   `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	DOI         string `json:"doi"`
	PMID        string `json:"pmid"`
	StudyDesign string `json:"studyDesign"`
	Notes       string `json:"notes"`
}

func (r *StudyRequest) toModel(projectID string) *model.Study {
	return &model.Study{
		ProjectID:   projectID,
		Title:       r.Title,
		Authors:     r.Authors,
		Journal:     r.Journal,
		Year:        r.Year,
		DOI:         r.DOI,
		PMID:        r.PMID,
		StudyDesign: r.StudyDesign,
		Notes:       r.Notes,
	}
}

// Create godoc
// @Summary Add a study to a project
// @Tags studies
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path string       true "project id"
// @Param   body body StudyRequest true "study payload"
// @Success 201 {object} util.Response{data=model.Study}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/projects/{id}/studies [post]
func (c *StudyController) Create(ctx *gin.Context) {
	var req StudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	study := req.toModel(ctx.Param("id"))
	if err := c.StudyService.Create(claims, study); err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Created(ctx, study)
}

// List godoc
// @Summary List studies of a project
// @Tags studies
// @Produce  json
// @Security BearerAuth
// @Param   id    path  string true  "project id"
// @Param   q     query string false "title/author/journal search"
// @Param   page  query int    false "page"
// @Param   limit query int    false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Failure 404 {object} util.Response
// @Router /api/projects/{id}/studies [get]
func (c *StudyController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	studies, total, err := c.StudyService.List(ctx.Param("id"), claims, ctx.Query("q"), page, limit)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: studies, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get a study
// @Tags studies
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "study id"
// @Success 200 {object} util.Response{data=model.Study}
// @Failure 404 {object} util.Response
// @Router /api/studies/{id} [get]
func (c *StudyController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid study id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	study, err := c.StudyService.Get(uint(id), claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, study)
}

// Update godoc
// @Summary Update a study
// @Tags studies
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path int          true "study id"
// @Param   body body StudyRequest true "study payload"
// @Success 200 {object} util.Response{data=model.Study}
// @Failure 404 {object} util.Response
// @Router /api/studies/{id} [put]
func (c *StudyController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid study id")
		return
	}

	var req StudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	study, err := c.StudyService.Update(uint(id), claims, req.toModel(""))
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, study)
}

// Delete godoc
// @Summary Delete a study
// @Tags studies
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "study id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/studies/{id} [delete]
func (c *StudyController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid study id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.StudyService.Delete(uint(id), claims); err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
