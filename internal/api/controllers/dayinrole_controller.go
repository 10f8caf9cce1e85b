package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rolepeek/internal/models/request_models"
	"rolepeek/internal/services"
	"rolepeek/pkg/middleware"
	"rolepeek/pkg/utils"
)

type DayInRoleController struct {
	dayInRoleService services.DayInRoleServiceInterface
}

func NewDayInRoleController(dayInRoleService services.DayInRoleServiceInterface) *DayInRoleController {
	return &DayInRoleController{
		dayInRoleService: dayInRoleService,
	}
}

func currentAccountID(c *gin.Context) (uuid.UUID, bool) {
	accountID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
		return uuid.Nil, false
	}
	return accountID, true
}

// Generate godoc
// @Summary Generate a day-in-role preview from a job posting
// @Description Turns a pasted job posting or a posting URL into a structured preview
// @Tags DayInRole
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request_models.GenerateDayInRoleRequest true "Generation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /dayinrole/generate [post]
func (d *DayInRoleController) Generate(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req request_models.GenerateDayInRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := d.dayInRoleService.Generate(c.Request.Context(), accountID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Set(middleware.GenerationDoneKey, true)
	utils.RespondSuccess(c, result, "Day in role generated")
}

// GetById godoc
// @Summary Get one of your day-in-role previews
// @Tags DayInRole
// @Produce json
// @Security BearerAuth
// @Param id path string true "Day in role id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /dayinrole/{id} [get]
func (d *DayInRoleController) GetById(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	result, err := d.dayInRoleService.GetById(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

// List godoc
// @Summary List your day-in-role previews
// @Tags DayInRole
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.APIResponse
// @Router /dayinrole [get]
func (d *DayInRoleController) List(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	result, err := d.dayInRoleService.ListOwn(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

// Samples godoc
// @Summary Browse sample previews
// @Description Public, no generation quota. With a query, results are ranked by similarity.
// @Tags DayInRole
// @Produce json
// @Param query query string false "Search text"
// @Success 200 {object} utils.APIResponse
// @Router /dayinrole/samples [get]
func (d *DayInRoleController) Samples(c *gin.Context) {
	var req request_models.SampleSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := d.dayInRoleService.SearchSamples(c.Request.Context(), req.Query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}
