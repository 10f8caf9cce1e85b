package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rolepeek/internal/services"
	"rolepeek/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionServiceInterface
}

func NewSubscriptionController(subscriptionService services.SubscriptionServiceInterface) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
	}
}

// Status godoc
// @Summary Current subscription and remaining limits
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.APIResponse
// @Router /subscription/status [get]
func (s *SubscriptionController) Status(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	result, err := s.subscriptionService.GetStatus(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}

// Sync godoc
// @Summary Re-pull the subscription from the billing provider
// @Description Recovery path for missed webhooks; idempotent
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.APIResponse
// @Router /subscription/sync [post]
func (s *SubscriptionController) Sync(c *gin.Context) {
	accountID, ok := currentAccountID(c)
	if !ok {
		return
	}

	result, err := s.subscriptionService.SyncFromProvider(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Subscription synced")
}

// Debug godoc
// @Summary Stored vs computed subscription state
// @Description Admin only, used by support to diagnose billing mismatches
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.APIResponse
// @Router /subscription/debug/{id} [get]
func (s *SubscriptionController) Debug(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	result, err := s.subscriptionService.GetDebug(c.Request.Context(), accountID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "")
}
