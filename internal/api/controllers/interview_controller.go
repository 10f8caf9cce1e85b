package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"rolepeek/internal/models/request_models"
	"rolepeek/internal/services"
	"rolepeek/pkg/middleware"
	"rolepeek/pkg/utils"
)

type InterviewController struct {
	interviewService services.InterviewServiceInterface
}

func NewInterviewController(interviewService services.InterviewServiceInterface) *InterviewController {
	return &InterviewController{
		interviewService: interviewService,
	}
}

// Generate godoc
// @Summary Generate mock interview questions for a day-in-role preview
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request_models.GenerateInterviewRequest true "Generation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Router /interview/generate [post]
func (i *InterviewController) Generate(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req request_models.GenerateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	// The gate stored its decision; the plan caps how many questions one
	// interview may contain.
	maxQuestions := 5
	if v, exists := c.Get(middleware.EntitlementCheckKey); exists {
		if check, ok := v.(services.CheckResult); ok && check.Limits.QuestionsPerInterview > 0 {
			maxQuestions = check.Limits.QuestionsPerInterview
		}
	}

	result, err := i.interviewService.Generate(c.Request.Context(), accountID, req, maxQuestions)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Set(middleware.GenerationDoneKey, true)
	utils.RespondSuccess(c, result, "Interview generated")
}

// GetQuestions godoc
// @Summary Get the questions of one of your interviews
// @Tags Interviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /interview/{id} [get]
func (i *InterviewController) GetQuestions(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	result, err := i.interviewService.GetQuestions(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

// SubmitFeedback godoc
// @Summary Submit answers and receive coaching feedback
// @Description Feedback is advisory and does not consume generation quota
// @Tags Interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Interview id"
// @Param request body request_models.SubmitAnswersRequest true "Answers payload"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /interview/{id}/feedback [post]
func (i *InterviewController) SubmitFeedback(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	var req request_models.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := i.interviewService.SubmitAnswersAndEvaluate(c.Request.Context(), accountID, c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Feedback ready")
}
