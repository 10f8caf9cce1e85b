package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rolepeek/internal/services"
	"rolepeek/pkg/utils"
)

const (
	// EntitlementCheckKey exposes the gate's decision to the handler, which
	// reads plan limits (question counts) from it.
	EntitlementCheckKey = "entitlement_check"

	// GenerationDoneKey is set by the handler once content was actually
	// produced and persisted. The gate only meters when it is present, so
	// failed generations never consume quota.
	GenerationDoneKey = "generation_done"
)

// GenerationGate wraps a generation endpoint with the entitlement check
// and the usage meter. The check runs before the handler and aborts with
// 403 plus the current limits on denial; the meter runs after the handler,
// against the same usage window the check read.
func GenerationGate(
	entitlement services.EntitlementServiceInterface,
	meter services.UsageMeterInterface,
	action services.GenerationAction,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := uuid.Parse(c.GetString("user_id"))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		result := entitlement.CheckAction(c.Request.Context(), accountID, action)
		if !result.Allowed {
			utils.HandleServiceError(c, utils.QuotaError{
				Reason: result.Reason,
				PlanID: result.PlanID,
				Limits: result.Limits,
			})
			c.Abort()
			return
		}

		c.Set(EntitlementCheckKey, result)
		c.Next()

		if !c.GetBool(GenerationDoneKey) {
			return
		}
		if result.PlanID == "admin" {
			return
		}

		switch action {
		case services.ActionInterview:
			meter.RecordInterview(c.Request.Context(), accountID, result.PeriodStart, result.PeriodEnd)
		default:
			meter.RecordDayInRole(c.Request.Context(), accountID, result.PeriodStart, result.PeriodEnd)
		}
	}
}
