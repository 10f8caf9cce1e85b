package services

import (
	"context"
	"log"

	"github.com/google/uuid"
	"rolepeek/internal/repositories"
)

// UsageMeterInterface records consumption after a generation succeeded.
// Metering is fail-open: the user already got their content, so a failed
// increment is logged for manual reconciliation instead of surfacing.
// The gate in front of generation is the fail-closed side.
type UsageMeterInterface interface {
	RecordDayInRole(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64)
	RecordInterview(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64)
}

type UsageMeter struct {
	usageRepo repositories.IUsageRepository
}

func NewUsageMeter(usageRepo repositories.IUsageRepository) UsageMeterInterface {
	return &UsageMeter{usageRepo: usageRepo}
}

func (m *UsageMeter) RecordDayInRole(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) {
	if err := m.usageRepo.IncrementDayInRole(ctx, accountID, periodStart, periodEnd); err != nil {
		log.Printf("usage meter: day-in-role increment failed account=%s period=%d err=%v", accountID, periodStart, err)
	}
}

func (m *UsageMeter) RecordInterview(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) {
	if err := m.usageRepo.IncrementInterview(ctx, accountID, periodStart, periodEnd); err != nil {
		log.Printf("usage meter: interview increment failed account=%s period=%d err=%v", accountID, periodStart, err)
	}
}
