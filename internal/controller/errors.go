package controller

import (
	"errors"

	"github.com/choxos/robass-backend/internal/util"

	"github.com/gin-gonic/gin"
)

// abortWithServiceError maps service sentinel errors onto HTTP statuses.
// Ownership failures surface as 404 so resource existence is not leaked.
func abortWithServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrProjectNotFound),
		errors.Is(err, util.ErrStudyNotFound),
		errors.Is(err, util.ErrToolNotFound),
		errors.Is(err, util.ErrAssessmentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrDomainNotFound),
		errors.Is(err, util.ErrUnknownQuestion),
		errors.Is(err, util.ErrInvalidUpdateKind),
		errors.Is(err, util.ErrInvalidResponse),
		errors.Is(err, util.ErrInvalidBiasRating),
		errors.Is(err, util.ErrInvalidStatus),
		errors.Is(err, util.ErrIncompleteJudgements),
		errors.Is(err, util.ErrEngineUnsupported):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
