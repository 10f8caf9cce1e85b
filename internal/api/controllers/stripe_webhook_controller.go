package controllers

import (
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79/webhook"
	"rolepeek/internal/services"
	"rolepeek/pkg/utils"
)

const stripeWebhookMaxBody = 65536

type StripeWebhookController struct {
	reconciler services.ReconcilerInterface
}

func NewStripeWebhookController(reconciler services.ReconcilerInterface) *StripeWebhookController {
	return &StripeWebhookController{
		reconciler: reconciler,
	}
}

// Handle godoc
// @Summary Stripe webhook receiver
// @Description Verifies the Stripe signature and reconciles the subscription store
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /webhooks/stripe [post]
func (s *StripeWebhookController) Handle(c *gin.Context) {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		log.Printf("stripe webhook secret missing")
		utils.RespondError(c, http.StatusInternalServerError, "Webhook not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, stripeWebhookMaxBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable payload")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		secret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Printf("stripe webhook signature failed: %v", err)
		utils.HandleServiceError(c, utils.ErrWebhookSignature)
		return
	}

	eventType := string(event.Type)
	ctx := c.Request.Context()

	switch {
	case eventType == "checkout.session.completed":
		err = s.reconciler.HandleStripeCheckoutCompleted(ctx, event.Data.Raw)
	case strings.HasPrefix(eventType, "customer.subscription."):
		err = s.reconciler.HandleStripeSubscriptionEvent(ctx, eventType, event.Data.Raw)
	case strings.HasPrefix(eventType, "invoice."):
		err = s.reconciler.HandleStripeInvoiceEvent(ctx, eventType, event.Data.Raw)
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
		log.Printf("stripe webhook ignoring event type %s", eventType)
	}

	if err != nil {
		// A 5xx makes Stripe redeliver; reconciliation is idempotent so the
		// retry is safe.
		log.Printf("stripe webhook reconcile failed type=%s err=%v", eventType, err)
		utils.RespondError(c, http.StatusInternalServerError, "Reconciliation failed")
		return
	}

	utils.RespondSuccess(c, nil, "ok")
}
