package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionStatus string

const (
	SubStatusActive   SubscriptionStatus = "active"
	SubStatusPastDue  SubscriptionStatus = "past_due"
	SubStatusCanceled SubscriptionStatus = "canceled"
	SubStatusUnpaid   SubscriptionStatus = "unpaid"
)

// Subscription is the canonical billing record, exactly one per account.
// It is written only by the billing reconciler (webhooks + manual sync)
// and by signup, which seeds the free plan.
type Subscription struct {
	BaseModel
	AccountID uuid.UUID `gorm:"uniqueIndex"`

	// PlanID refers to the static catalog ("free", "start", "pro"),
	// never to a provider price id.
	PlanID string             `gorm:"index;default:free"`
	Status SubscriptionStatus `gorm:"size:16;index"`

	ProviderCustomerID string `gorm:"index"`
	ProviderSubID      string `gorm:"index"`

	// Unix seconds. The free plan gets a long synthetic period at signup.
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	CancelAtPeriodEnd  bool

	// Raw snapshot of the last provider payload that touched this record,
	// kept for support and the debug endpoint.
	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Account Account `gorm:"foreignKey:AccountID"`
}
