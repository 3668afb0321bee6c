package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/heartscan/internal/controller"
	"github.com/lshigami/heartscan/internal/service"
	"github.com/rs/zerolog/log"
)

type BankController struct {
	catalogService service.CatalogService
}

func NewBankController(cs service.CatalogService) *BankController {
	return &BankController{catalogService: cs}
}

func (c *BankController) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/assessment-types/:type", c.GetBankDetail)
}

// GetBankDetail godoc
// @Summary (Admin) Inspect a question bank
// @Description Full scoring configuration: categories, weights, reverse flags, option mappings and per-category maxima.
// @Tags Admin - Question Banks
// @Produce json
// @Param type path string true "Assessment type"
// @Success 200 {object} dto.BankDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown assessment type"
// @Router /admin/assessment-types/{type} [get]
func (c *BankController) GetBankDetail(ctx *gin.Context) {
	detail, err := c.catalogService.BankDetail(ctx.Param("type"))
	if err != nil {
		log.Warn().Err(err).Str("type", ctx.Param("type")).Msg("Admin GetBankDetail: lookup failed")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}
