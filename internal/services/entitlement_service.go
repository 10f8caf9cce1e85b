package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"rolepeek/internal/models/db_models"
	"rolepeek/internal/models/response_models"
	"rolepeek/internal/repositories"
	"rolepeek/pkg/utils"
)

type GenerationAction string

const (
	ActionDayInRole GenerationAction = "dayinrole"
	ActionInterview GenerationAction = "interview"
)

type EntitlementStatus struct {
	IsFreePlan   bool
	PlanID       string
	Subscription *db_models.Subscription
	Limits       response_models.EntitlementLimits

	// Usage window the counters above were read from; the meter increments
	// against the same window.
	PeriodStart int64
	PeriodEnd   int64
}

type CheckResult struct {
	Allowed bool
	Reason  string
	PlanID  string
	Limits  response_models.EntitlementLimits

	// Window the decision was made against, for the post-generation meter.
	PeriodStart int64
	PeriodEnd   int64
}

// EntitlementServiceInterface decides whether an account may run a
// generation right now. Decisions are computed fresh from the stores on
// every call and fail closed: any internal error reads as the free plan
// with everything denied.
type EntitlementServiceInterface interface {
	GetStatus(ctx context.Context, accountID uuid.UUID) EntitlementStatus
	CheckAction(ctx context.Context, accountID uuid.UUID, action GenerationAction) CheckResult
}

type EntitlementService struct {
	subscriptionRepo repositories.ISubscriptionRepository
	usageRepo        repositories.IUsageRepository
	accountRepo      repositories.AccountRepository
	catalog          PlanCatalogInterface
	now              func() time.Time
}

func NewEntitlementService(
	subscriptionRepo repositories.ISubscriptionRepository,
	usageRepo repositories.IUsageRepository,
	accountRepo repositories.AccountRepository,
	catalog PlanCatalogInterface,
) EntitlementServiceInterface {
	return &EntitlementService{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		accountRepo:      accountRepo,
		catalog:          catalog,
		now:              time.Now,
	}
}

func (e *EntitlementService) deniedStatus(sub *db_models.Subscription) EntitlementStatus {
	free := e.catalog.FreePlan()
	start, end := utils.CalendarMonthWindow(e.now())
	return EntitlementStatus{
		IsFreePlan:   true,
		PlanID:       free.ID,
		Subscription: sub,
		PeriodStart:  start,
		PeriodEnd:    end,
		Limits: response_models.EntitlementLimits{
			IsFreePlan: true,
			PlanID:     free.ID,
		},
	}
}

func (e *EntitlementService) GetStatus(ctx context.Context, accountID uuid.UUID) EntitlementStatus {
	sub, err := e.subscriptionRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		log.Printf("entitlement: subscription lookup failed account=%s err=%v", accountID, err)
		return e.deniedStatus(nil)
	}

	// Missing or non-active records read as free. An unknown plan id also
	// reads as free: a bad catalog reference must never grant access.
	plan := e.catalog.FreePlan()
	if sub != nil && sub.Status == db_models.SubStatusActive {
		if p := e.catalog.GetPlan(sub.PlanID); p != nil {
			plan = *p
		} else {
			log.Printf("entitlement: unknown plan id %q account=%s, treating as free", sub.PlanID, accountID)
		}
	}
	isFreePlan := plan.ID == PlanFree

	var periodStart, periodEnd int64
	if sub != nil {
		periodStart, periodEnd = utils.UsageWindowFor(sub.CurrentPeriodStart, sub.CurrentPeriodEnd, isFreePlan, e.now())
	} else {
		periodStart, periodEnd = utils.CalendarMonthWindow(e.now())
	}

	usage, err := e.usageRepo.GetOrCreate(ctx, accountID, periodStart, periodEnd)
	if err != nil {
		log.Printf("entitlement: usage lookup failed account=%s err=%v", accountID, err)
		return e.deniedStatus(sub)
	}

	return EntitlementStatus{
		IsFreePlan:   isFreePlan,
		PlanID:       plan.ID,
		Subscription: sub,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		Limits: response_models.EntitlementLimits{
			IsFreePlan:            isFreePlan,
			PlanID:                plan.ID,
			DayInRoleLimit:        plan.DayInRoleLimit,
			DayInRoleUsed:         usage.DayInRoleUsed,
			InterviewLimit:        plan.InterviewLimit,
			InterviewsUsed:        usage.InterviewsUsed,
			QuestionsPerInterview: plan.QuestionsPerInterview,
			CanGenerateDayInRole:  !isFreePlan && usage.DayInRoleUsed < plan.DayInRoleLimit,
			CanGenerateInterview:  !isFreePlan && usage.InterviewsUsed < plan.InterviewLimit,
		},
	}
}

func (e *EntitlementService) CheckAction(ctx context.Context, accountID uuid.UUID, action GenerationAction) CheckResult {
	// Admin accounts skip plan logic entirely.
	account, err := e.accountRepo.FindById(ctx, accountID.String())
	if err == nil && account != nil && account.Role == "admin" {
		return CheckResult{
			Allowed: true,
			PlanID:  "admin",
			Limits: response_models.EntitlementLimits{
				PlanID:                "admin",
				QuestionsPerInterview: 10,
				CanGenerateDayInRole:  true,
				CanGenerateInterview:  true,
			},
		}
	}

	status := e.GetStatus(ctx, accountID)

	allowed := status.Limits.CanGenerateDayInRole
	if action == ActionInterview {
		allowed = status.Limits.CanGenerateInterview
	}
	if allowed {
		return CheckResult{
			Allowed:     true,
			PlanID:      status.PlanID,
			Limits:      status.Limits,
			PeriodStart: status.PeriodStart,
			PeriodEnd:   status.PeriodEnd,
		}
	}

	reason := "You are on the free plan. Upgrade to generate day-in-role previews."
	if action == ActionInterview {
		reason = "You are on the free plan. Upgrade to generate interviews."
	}
	if !status.IsFreePlan {
		reason = "You have reached your monthly day-in-role limit."
		if action == ActionInterview {
			reason = "You have reached your monthly interview limit."
		}
	}

	return CheckResult{Allowed: false, Reason: reason, PlanID: status.PlanID, Limits: status.Limits}
}
