package db_models

import (
	"github.com/google/uuid"
)

// UsagePeriod counts generations per account per billing window. Counters
// only ever grow; a new window gets a fresh row instead of resetting the
// old one, so historical usage stays queryable after plan changes.
type UsagePeriod struct {
	BaseModel
	AccountID   uuid.UUID `gorm:"index:ux_usage_account_period,unique"`
	PeriodStart int64     `gorm:"index:ux_usage_account_period,unique"`
	PeriodEnd   int64     `gorm:"not null"`

	DayInRoleUsed  int `gorm:"not null;default:0"`
	InterviewsUsed int `gorm:"not null;default:0"`

	ResetAt int64
}
