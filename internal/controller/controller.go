package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/service"
	"github.com/rs/zerolog/log"
)

// Error codes returned in dto.ErrorResponse.Code.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeIncomplete       = "INCOMPLETE_ASSESSMENT"
	CodeAlreadyCompleted = "ALREADY_COMPLETED"
	CodeRetakeCooldown   = "RETAKE_COOLDOWN"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// RespondError maps service errors to HTTP statuses with structured detail.
func RespondError(ctx *gin.Context, err error) {
	var (
		verr       *service.ValidationError
		incomplete *service.IncompleteAssessmentError
		done       *service.AlreadyCompletedError
		cooldown   *service.RetakeCooldownError
	)
	switch {
	case errors.As(err, &verr):
		details := map[string]interface{}{"reason": verr.Reason}
		if verr.Field != "" {
			details["field"] = verr.Field
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: verr.Error(), Code: CodeValidation, Details: details})

	case errors.As(err, &incomplete):
		ctx.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Message: incomplete.Error(),
			Code:    CodeIncomplete,
			Details: map[string]interface{}{
				"completion_rate":      incomplete.CompletionRate,
				"missing_question_ids": incomplete.MissingQuestionIDs,
			},
		})

	case errors.As(err, &done):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{
			Message: done.Error(),
			Code:    CodeAlreadyCompleted,
			Details: map[string]interface{}{"assessment_id": done.AssessmentID, "status": done.Status},
		})

	case errors.As(err, &cooldown):
		wait := time.Until(cooldown.CanRetakeAfter)
		if wait < 0 {
			wait = 0
		}
		ctx.Header("Retry-After", formatSeconds(wait))
		ctx.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
			Message: cooldown.Error(),
			Code:    CodeRetakeCooldown,
			Details: map[string]interface{}{
				"assessment_type":  cooldown.AssessmentType,
				"can_retake_after": cooldown.CanRetakeAfter,
			},
		})

	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUnknownAssessmentType):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error(), Code: CodeNotFound})

	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Unhandled service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error", Code: CodeInternal})
	}
}

// RespondBindError reports a malformed request body.
func RespondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Message: "Invalid request body",
		Code:    CodeValidation,
		Details: map[string]interface{}{"reason": err.Error()},
	})
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(int64((d+time.Second-1)/time.Second), 10)
}
