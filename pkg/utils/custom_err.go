package utils

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRecordNotFound     = errors.New("record not found")
	ErrSubscriptionExists = errors.New("subscription already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDatabaseError      = errors.New("database error")
	ErrWebhookSignature   = errors.New("webhook signature invalid")
	ErrUnexpectedAIOutput = errors.New("unexpected ai output")
	ErrJobPostingFetch    = errors.New("job posting could not be fetched")
)

// QuotaError is returned when the entitlement engine denies a generation.
// It carries the plan and its limits so handlers can render the right
// upgrade prompt next to the current usage.
type QuotaError struct {
	Reason string
	PlanID string
	Limits interface{}
}

func (e QuotaError) Error() string {
	return e.Reason
}
