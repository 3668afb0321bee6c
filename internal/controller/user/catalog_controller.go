package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/heartscan/internal/controller"
	"github.com/lshigami/heartscan/internal/service"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(cs service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: cs}
}

func (c *CatalogController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/assessment-types", c.ListAssessmentTypes)
	api.GET("/assessment-types/:type/questions", c.GetQuestions)
}

// ListAssessmentTypes godoc
// @Summary List assessment types
// @Tags Catalog
// @Produce json
// @Success 200 {array} dto.AssessmentTypeDTO
// @Router /assessment-types [get]
func (c *CatalogController) ListAssessmentTypes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.catalogService.ListTypes())
}

// GetQuestions godoc
// @Summary Get the questions of an assessment type
// @Description Ordered questions with scenario options, without scoring metadata.
// @Tags Catalog
// @Produce json
// @Param type path string true "Assessment type"
// @Success 200 {array} dto.QuestionDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown assessment type"
// @Router /assessment-types/{type}/questions [get]
func (c *CatalogController) GetQuestions(ctx *gin.Context) {
	questions, err := c.catalogService.Questions(ctx.Param("type"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}
