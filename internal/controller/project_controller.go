package controller

import (
	"strconv"

	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProjectController struct {
	ProjectService    *service.ProjectService
	AssessmentService *service.AssessmentService
}

func NewProjectController(projectService *service.ProjectService, assessmentService *service.AssessmentService) *ProjectController {
	return &ProjectController{
		ProjectService:    projectService,
		AssessmentService: assessmentService,
	}
}

// ProjectRequest defines the create/update payload.
// swagger:model ProjectRequest
type ProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

// Create godoc
// @Summary Create a project
// @Tags projects
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ProjectRequest true "project payload"
// @Success 201 {object} util.Response{data=model.Project}
// @Failure 400 {object} util.Response
// @Router /api/projects [post]
func (c *ProjectController) Create(ctx *gin.Context) {
	var req ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	project, err := c.ProjectService.Create(claims.UserID, req.Name, req.Description)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, project)
}

// List godoc
// @Summary List the caller's projects
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Param   q     query string false "name search"
// @Param   page  query int    false "page"
// @Param   limit query int    false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/projects [get]
func (c *ProjectController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	projects, total, err := c.ProjectService.List(claims.UserID, ctx.Query("q"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: projects, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get a project
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "project id"
// @Success 200 {object} util.Response{data=model.Project}
// @Failure 404 {object} util.Response
// @Router /api/projects/{id} [get]
func (c *ProjectController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	project, err := c.ProjectService.Get(ctx.Param("id"), claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, project)
}

// Update godoc
// @Summary Update a project
// @Tags projects
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id   path string         true "project id"
// @Param   body body ProjectRequest true "project payload"
// @Success 200 {object} util.Response{data=model.Project}
// @Failure 404 {object} util.Response
// @Router /api/projects/{id} [put]
func (c *ProjectController) Update(ctx *gin.Context) {
	var req ProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	project, err := c.ProjectService.Update(ctx.Param("id"), claims, req.Name, req.Description)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, project)
}

// Delete godoc
// @Summary Delete a project and everything under it
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "project id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/projects/{id} [delete]
func (c *ProjectController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ProjectService.Delete(ctx.Param("id"), claims); err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Stats godoc
// @Summary Project statistics
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "project id"
// @Success 200 {object} util.Response{data=service.ProjectStats}
// @Failure 404 {object} util.Response
// @Router /api/projects/{id}/stats [get]
func (c *ProjectController) Stats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	stats, err := c.ProjectService.Stats(ctx.Param("id"), claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Dashboard godoc
// @Summary Reviewer dashboard
// @Description Project, study and assessment counts plus recent activity
// @Tags projects
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DashboardStats}
// @Router /api/dashboard [get]
func (c *ProjectController) Dashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	stats, err := c.AssessmentService.Dashboard(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
