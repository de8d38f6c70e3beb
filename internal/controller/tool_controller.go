package controller

import (
	"strconv"

	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ToolController struct {
	ToolService *service.ToolService
}

func NewToolController(toolService *service.ToolService) *ToolController {
	return &ToolController{ToolService: toolService}
}

// ListTools godoc
// @Summary List assessment tools
// @Description Returns the active tool catalog with domains and signalling questions. Readable without authentication.
// @Tags tools
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.AssessmentTool}
// @Router /api/tools [get]
func (c *ToolController) ListTools(ctx *gin.Context) {
	tools, err := c.ToolService.ListTools(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, tools)
}

// GetTool godoc
// @Summary Get one assessment tool
// @Tags tools
// @Produce  json
// @Param   id path int true "tool id"
// @Success 200 {object} util.Response{data=model.AssessmentTool}
// @Failure 404 {object} util.Response
// @Router /api/tools/{id} [get]
func (c *ToolController) GetTool(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid tool id")
		return
	}

	tool, err := c.ToolService.GetTool(uint(id))
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, tool)
}
