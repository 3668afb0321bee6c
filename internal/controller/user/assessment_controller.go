package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/heartscan/internal/controller"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/service"
	"github.com/rs/zerolog/log"
)

type AssessmentController struct {
	assessmentService service.AssessmentService
	responseService   service.ResponseService
	resultService     service.ResultService
	insightService    service.InsightService
}

func NewAssessmentController(
	as service.AssessmentService,
	rs service.ResponseService,
	results service.ResultService,
	insights service.InsightService,
) *AssessmentController {
	return &AssessmentController{
		assessmentService: as,
		responseService:   rs,
		resultService:     results,
		insightService:    insights,
	}
}

func (c *AssessmentController) RegisterRoutes(api *gin.RouterGroup) {
	assessments := api.Group("/assessments")
	{
		assessments.POST("", c.StartAssessment)
		assessments.GET("/:id", c.GetAssessment)
		assessments.GET("/:id/responses", c.ListResponses)
		assessments.POST("/:id/responses", c.SubmitResponse)
		assessments.POST("/:id/responses/batch", c.SubmitResponses)
		assessments.POST("/:id/complete", c.CompleteAssessment)
		assessments.POST("/:id/abandon", c.AbandonAssessment)
		assessments.GET("/:id/result", c.GetResult)
		assessments.GET("/:id/insight", c.GetInsight)
	}

	users := api.Group("/users/:user_id")
	{
		users.GET("/assessments", c.GetHistory)
		users.GET("/progress/:type", c.GetProgress)
	}
}

// StartAssessment godoc
// @Summary Start an assessment
// @Description Opens a new in-progress session. Fails with 429 while the retake cooldown of the type is active.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param request body dto.StartAssessmentRequest true "User, assessment type and optional micro-intake"
// @Success 201 {object} dto.AssessmentDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request or micro-intake"
// @Failure 404 {object} dto.ErrorResponse "Unknown assessment type"
// @Failure 429 {object} dto.ErrorResponse "Retake cooldown active"
// @Router /assessments [post]
func (c *AssessmentController) StartAssessment(ctx *gin.Context) {
	var req dto.StartAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("StartAssessment: Failed to bind JSON")
		controller.RespondBindError(ctx, err)
		return
	}
	assessment, err := c.assessmentService.Start(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, assessment)
}

// GetAssessment godoc
// @Summary Get an assessment
// @Description Returns the session with its answered and total question counts.
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.AssessmentDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	assessment, err := c.assessmentService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// ListResponses godoc
// @Summary List stored responses
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {array} dto.ResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id}/responses [get]
func (c *AssessmentController) ListResponses(ctx *gin.Context) {
	responses, err := c.responseService.List(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, responses)
}

// SubmitResponse godoc
// @Summary Answer one question
// @Description Stores or overwrites the answer to one question. Safe to retry.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param answer body dto.AnswerRequest true "Value (1-5) for statements or selected_option_id for scenarios"
// @Success 200 {object} dto.ResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid answer"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Assessment no longer in progress"
// @Router /assessments/{id}/responses [post]
func (c *AssessmentController) SubmitResponse(ctx *gin.Context) {
	var req dto.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	response, err := c.responseService.Submit(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// SubmitResponses godoc
// @Summary Answer several questions at once
// @Description All answers are validated first; one invalid answer rejects the whole batch.
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param answers body dto.BatchAnswerRequest true "Answers"
// @Success 200 {array} dto.ResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid answer"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Assessment no longer in progress"
// @Router /assessments/{id}/responses/batch [post]
func (c *AssessmentController) SubmitResponses(ctx *gin.Context) {
	var req dto.BatchAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	responses, err := c.responseService.SubmitBatch(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, responses)
}

// CompleteAssessment godoc
// @Summary Complete an assessment
// @Description Scores, classifies and validates the answers and stores the result. Requires every question answered.
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Already completed or abandoned"
// @Failure 422 {object} dto.ErrorResponse "Not every question is answered"
// @Router /assessments/{id}/complete [post]
func (c *AssessmentController) CompleteAssessment(ctx *gin.Context) {
	result, err := c.resultService.Complete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// AbandonAssessment godoc
// @Summary Abandon an assessment
// @Description Allowed only while in progress. Does not start a retake cooldown.
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.AssessmentDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Assessment no longer in progress"
// @Router /assessments/{id}/abandon [post]
func (c *AssessmentController) AbandonAssessment(ctx *gin.Context) {
	assessment, err := c.assessmentService.Abandon(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, assessment)
}

// GetResult godoc
// @Summary Get the result of a completed assessment
// @Tags Results
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment or result not found"
// @Router /assessments/{id}/result [get]
func (c *AssessmentController) GetResult(ctx *gin.Context) {
	result, err := c.resultService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetInsight godoc
// @Summary Get the narrative insight of a result
// @Description Insights are produced in the background after completion and may not exist yet.
// @Tags Results
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.InsightDTO
// @Failure 404 {object} dto.ErrorResponse "Not available yet"
// @Router /assessments/{id}/insight [get]
func (c *AssessmentController) GetInsight(ctx *gin.Context) {
	insight, err := c.insightService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, insight)
}

// GetHistory godoc
// @Summary List a user's assessments
// @Description Newest first, optionally filtered by type.
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Param type query string false "Assessment type"
// @Success 200 {array} dto.AssessmentDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown assessment type"
// @Router /users/{user_id}/assessments [get]
func (c *AssessmentController) GetHistory(ctx *gin.Context) {
	history, err := c.assessmentService.History(ctx.Request.Context(), ctx.Param("user_id"), ctx.Query("type"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// GetProgress godoc
// @Summary Get retake progress
// @Tags Users
// @Produce json
// @Param user_id path string true "User ID"
// @Param type path string true "Assessment type"
// @Success 200 {object} dto.ProgressDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown assessment type"
// @Router /users/{user_id}/progress/{type} [get]
func (c *AssessmentController) GetProgress(ctx *gin.Context) {
	progress, err := c.assessmentService.GetProgress(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("type"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, progress)
}
