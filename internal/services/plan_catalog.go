package services

import (
	"os"
	"strings"
)

const (
	PlanFree  = "free"
	PlanStart = "start"
	PlanPro   = "pro"
)

type Plan struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	PriceCents            int64  `json:"price_cents"`
	DayInRoleLimit        int    `json:"day_in_role_limit"`
	InterviewLimit        int    `json:"interview_limit"`
	QuestionsPerInterview int    `json:"questions_per_interview"`

	// Provider price reference (Stripe price id), configured per deploy.
	ProviderPriceRef string `json:"-"`
}

// PlanHint carries whatever plan identification a provider event offered.
// Providers disagree on how they name plans, so resolution is a precedence
// chain, not a single lookup.
type PlanHint struct {
	InternalID string // our plan id passed through provider metadata
	Slug       string // provider-side slug / product name
	PriceRef   string // provider price id
	PriceCents int64
	HasPrice   bool
}

type PlanCatalogInterface interface {
	GetPlan(planID string) *Plan
	ListPlans() []Plan
	FreePlan() Plan
	ResolvePlanID(hint PlanHint) string
}

type PlanCatalog struct {
	plans []Plan
}

// NewPlanCatalog builds the static catalog. The free plan has zero limits:
// free accounts browse samples only, they never generate. Every lookup
// failure anywhere in the system falls back to this plan.
func NewPlanCatalog() PlanCatalogInterface {
	return &PlanCatalog{
		plans: []Plan{
			{
				ID:                    PlanFree,
				Name:                  "Free",
				PriceCents:            0,
				DayInRoleLimit:        0,
				InterviewLimit:        0,
				QuestionsPerInterview: 0,
			},
			{
				ID:                    PlanStart,
				Name:                  "Start",
				PriceCents:            900,
				DayInRoleLimit:        10,
				InterviewLimit:        5,
				QuestionsPerInterview: 5,
				ProviderPriceRef:      os.Getenv("STRIPE_PRICE_START"),
			},
			{
				ID:                    PlanPro,
				Name:                  "Pro",
				PriceCents:            1900,
				DayInRoleLimit:        30,
				InterviewLimit:        15,
				QuestionsPerInterview: 10,
				ProviderPriceRef:      os.Getenv("STRIPE_PRICE_PRO"),
			},
		},
	}
}

func (p *PlanCatalog) GetPlan(planID string) *Plan {
	for i := range p.plans {
		if p.plans[i].ID == planID {
			plan := p.plans[i]
			return &plan
		}
	}
	return nil
}

func (p *PlanCatalog) ListPlans() []Plan {
	out := make([]Plan, len(p.plans))
	copy(out, p.plans)
	return out
}

func (p *PlanCatalog) FreePlan() Plan {
	return *p.GetPlan(PlanFree)
}

// ResolvePlanID maps a provider's plan description to a catalog id.
// Precedence, deliberately in this order:
//  1. explicit internal id in provider metadata
//  2. slug equal to a catalog id
//  3. provider price ref matching a configured plan
//  4. slug keyword containment ("start", "pro")
//  5. zero price means free
//  6. free as the final default, never a paid plan
func (p *PlanCatalog) ResolvePlanID(hint PlanHint) string {
	if hint.InternalID != "" && p.GetPlan(hint.InternalID) != nil {
		return hint.InternalID
	}

	slug := strings.ToLower(strings.TrimSpace(hint.Slug))
	if slug != "" && p.GetPlan(slug) != nil {
		return slug
	}

	if hint.PriceRef != "" {
		for i := range p.plans {
			if p.plans[i].ProviderPriceRef != "" && p.plans[i].ProviderPriceRef == hint.PriceRef {
				return p.plans[i].ID
			}
		}
	}

	if strings.Contains(slug, "start") {
		return PlanStart
	}
	if strings.Contains(slug, "pro") {
		return PlanPro
	}

	if hint.HasPrice && hint.PriceCents == 0 {
		return PlanFree
	}

	return PlanFree
}
