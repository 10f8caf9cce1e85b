package response_models

// EntitlementLimits is the shape the UI renders on the pricing/limits
// widgets and inside 403 denials. Computed fresh per request, never cached.
type EntitlementLimits struct {
	IsFreePlan            bool   `json:"is_free_plan"`
	PlanID                string `json:"plan_id"`
	DayInRoleLimit        int    `json:"day_in_role_limit"`
	DayInRoleUsed         int    `json:"day_in_role_used"`
	InterviewLimit        int    `json:"interview_limit"`
	InterviewsUsed        int    `json:"interviews_used"`
	QuestionsPerInterview int    `json:"questions_per_interview"`
	CanGenerateDayInRole  bool   `json:"can_generate_day_in_role"`
	CanGenerateInterview  bool   `json:"can_generate_interview"`
}

type SubscriptionInfo struct {
	PlanID             string `json:"plan_id"`
	Status             string `json:"status"`
	ProviderCustomerID string `json:"provider_customer_id,omitempty"`
	ProviderSubID      string `json:"provider_sub_id,omitempty"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
}

type SubscriptionStatusResponse struct {
	Subscription *SubscriptionInfo `json:"subscription"`
	Limits       EntitlementLimits `json:"limits"`
}

// SubscriptionDebugResponse pairs the raw stored record with the computed
// entitlement so support can diagnose mismatches between the two.
type SubscriptionDebugResponse struct {
	Stored   interface{}       `json:"stored"`
	Computed EntitlementLimits `json:"computed"`
	Usage    interface{}       `json:"usage"`
}
