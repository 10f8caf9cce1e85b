package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"rolepeek/internal/services"
	"rolepeek/pkg/utils"
)

const commerceWebhookMaxBody = 65536

// commerceEnvelope is the outer shape every commerce platform event shares.
type commerceEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type CommerceWebhookController struct {
	reconciler services.ReconcilerInterface
}

func NewCommerceWebhookController(reconciler services.ReconcilerInterface) *CommerceWebhookController {
	return &CommerceWebhookController{
		reconciler: reconciler,
	}
}

// Handle godoc
// @Summary Commerce platform webhook receiver
// @Description Verifies the signed message headers and reconciles the subscription store
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /webhooks/commerce [post]
func (w *CommerceWebhookController) Handle(c *gin.Context) {
	secret := os.Getenv("COMMERCE_WEBHOOK_SECRET")
	if secret == "" {
		log.Printf("commerce webhook secret missing")
		utils.RespondError(c, http.StatusInternalServerError, "Webhook not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, commerceWebhookMaxBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable payload")
		return
	}

	// The signature covers the raw body; nothing gets parsed before it
	// checks out.
	err = utils.VerifyCommerceSignature(
		secret,
		c.GetHeader("svix-id"),
		c.GetHeader("svix-timestamp"),
		c.GetHeader("svix-signature"),
		body,
	)
	if err != nil {
		log.Printf("commerce webhook signature failed: %v", err)
		utils.HandleServiceError(c, utils.ErrWebhookSignature)
		return
	}

	var envelope commerceEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := w.reconciler.HandleCommerceEvent(c.Request.Context(), envelope.Type, envelope.Data); err != nil {
		// The platform redelivers on 5xx; applying the same event twice is
		// harmless.
		log.Printf("commerce webhook reconcile failed type=%s err=%v", envelope.Type, err)
		utils.RespondError(c, http.StatusInternalServerError, "Reconciliation failed")
		return
	}

	utils.RespondSuccess(c, nil, "ok")
}
