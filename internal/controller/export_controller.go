package controller

import (
	"net/http"

	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
}

func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

// ExportCSV godoc
// @Summary Export project assessments as CSV
// @Description Summary CSV by default, one row per assessment domain; ?detail=1 descends to question level
// @Tags exports
// @Produce  text/csv
// @Security BearerAuth
// @Param   id     path  string true  "project id"
// @Param   detail query int    false "1 for the detailed question-level export"
// @Success 200 {string} string "CSV attachment"
// @Failure 404 {object} util.Response
// @Router /api/projects/{id}/export/csv [get]
func (c *ExportController) ExportCSV(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	detailed := ctx.Query("detail") == "1"

	data, filename, err := c.ExportService.ExportCSV(ctx.Request.Context(), ctx.Param("id"), claims, detailed)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// RatingMatrix godoc
// @Summary Project rating matrix
// @Description One row per assessment with domain short-name to rating pairs, for external plotting tools
// @Tags exports
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "project id"
// @Success 200 {object} util.Response{data=[]service.MatrixRow}
// @Failure 404 {object} util.Response
// @Router /api/projects/{id}/export/matrix [get]
func (c *ExportController) RatingMatrix(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	rows, err := c.ExportService.RatingMatrix(ctx.Param("id"), claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// History godoc
// @Summary Export history of a project
// @Tags exports
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "project id"
// @Success 200 {object} util.Response{data=[]model.AssessmentExport}
// @Failure 404 {object} util.Response
// @Router /api/projects/{id}/exports [get]
func (c *ExportController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	exports, err := c.ExportService.History(ctx.Param("id"), claims)
	if err != nil {
		abortWithServiceError(ctx, err)
		return
	}
	util.Success(ctx, exports)
}
