package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"rolepeek/internal/models/db_models"
	"rolepeek/internal/repositories"
)

// SubscriptionChange is the canonical tuple every provider event is
// normalized into before it touches the store. One sink, two normalizer
// families, so reconciliation logic is not duplicated per provider.
type SubscriptionChange struct {
	AccountID          uuid.UUID
	PlanID             string
	Status             db_models.SubscriptionStatus
	PeriodStart        int64
	PeriodEnd          int64
	CancelAtPeriodEnd  bool
	ProviderCustomerID string
	ProviderSubID      string
	Raw                []byte
}

type ReconcilerInterface interface {
	ApplyChange(ctx context.Context, change SubscriptionChange) error
	SeedFreeSubscription(ctx context.Context, accountID uuid.UUID) error
	HandleCommerceEvent(ctx context.Context, eventType string, payload []byte) error
	HandleStripeCheckoutCompleted(ctx context.Context, payload []byte) error
	HandleStripeSubscriptionEvent(ctx context.Context, eventType string, payload []byte) error
	HandleStripeInvoiceEvent(ctx context.Context, eventType string, payload []byte) error
	SyncFromProvider(ctx context.Context, accountID uuid.UUID) error
}

type Reconciler struct {
	subscriptionRepo repositories.ISubscriptionRepository
	accountRepo      repositories.AccountRepository
	catalog          PlanCatalogInterface
	fetcher          ProviderSubscriptionFetcher
	now              func() time.Time
}

func NewReconciler(
	subscriptionRepo repositories.ISubscriptionRepository,
	accountRepo repositories.AccountRepository,
	catalog PlanCatalogInterface,
	fetcher ProviderSubscriptionFetcher,
) ReconcilerInterface {
	return &Reconciler{
		subscriptionRepo: subscriptionRepo,
		accountRepo:      accountRepo,
		catalog:          catalog,
		fetcher:          fetcher,
		now:              time.Now,
	}
}

// freePeriodYears is the synthetic window given to free-plan records; usage
// accounting for free accounts rolls over monthly regardless.
const freePeriodYears = 1

// ApplyChange is the single idempotent write path for billing state.
// Events are at-least-once and unordered, so the write is an upsert keyed by
// account; a replayed payload lands on identical state. An event for a user
// we do not know locally is logged and dropped, never materialized as an
// orphan subscription.
func (r *Reconciler) ApplyChange(ctx context.Context, change SubscriptionChange) error {
	account, err := r.accountRepo.FindById(ctx, change.AccountID.String())
	if err != nil {
		return fmt.Errorf("reconcile: account lookup: %w", err)
	}
	if account == nil {
		log.Printf("reconcile: dropping event for unknown account=%s plan=%s", change.AccountID, change.PlanID)
		return nil
	}

	if r.catalog.GetPlan(change.PlanID) == nil {
		log.Printf("reconcile: unknown plan id %q account=%s, storing as free", change.PlanID, change.AccountID)
		change.PlanID = PlanFree
	}

	meta := change.Raw
	if len(meta) == 0 {
		meta = []byte("{}")
	}

	sub := db_models.Subscription{
		AccountID:          change.AccountID,
		PlanID:             change.PlanID,
		Status:             change.Status,
		ProviderCustomerID: change.ProviderCustomerID,
		ProviderSubID:      change.ProviderSubID,
		CurrentPeriodStart: change.PeriodStart,
		CurrentPeriodEnd:   change.PeriodEnd,
		CancelAtPeriodEnd:  change.CancelAtPeriodEnd,
		Metadata:           datatypes.JSON(meta),
	}

	// A re-subscription under a new provider id simply replaces the old ref;
	// the upsert on account_id takes care of that.
	if err := r.subscriptionRepo.Upsert(ctx, &sub); err != nil {
		return fmt.Errorf("reconcile: upsert account=%s: %w", change.AccountID, err)
	}

	if change.ProviderCustomerID != "" && account.ProviderCustomerID != change.ProviderCustomerID {
		if err := r.accountRepo.SetProviderCustomerID(ctx, account.ID.String(), change.ProviderCustomerID); err != nil {
			log.Printf("reconcile: customer ref update failed account=%s err=%v", change.AccountID, err)
		}
	}

	return nil
}

// SeedFreeSubscription creates the signup-time free record with a long
// synthetic period. Upsert semantics tolerate the signup/webhook race.
func (r *Reconciler) SeedFreeSubscription(ctx context.Context, accountID uuid.UUID) error {
	now := r.now()
	return r.ApplyChange(ctx, SubscriptionChange{
		AccountID:   accountID,
		PlanID:      PlanFree,
		Status:      db_models.SubStatusActive,
		PeriodStart: now.Unix(),
		PeriodEnd:   now.AddDate(freePeriodYears, 0, 0).Unix(),
	})
}

// Commerce platform event shapes. The platform describes plans through the
// subscription's line items; the active item carries the plan slug/amount.
type commercePlan struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Amount int64  `json:"amount"`
}

type commerceItem struct {
	Status      string       `json:"status"`
	Plan        commercePlan `json:"plan"`
	PeriodStart int64        `json:"period_start"`
	PeriodEnd   int64        `json:"period_end"`
}

type commerceSubscription struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Status            string            `json:"status"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	Items             []commerceItem    `json:"items"`
	Metadata          map[string]string `json:"metadata"`
}

type commerceUser struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

func (r *Reconciler) HandleCommerceEvent(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case "subscription.created", "subscription.updated":
		return r.applyCommerceSubscription(ctx, payload, false)
	case "subscription.deleted":
		return r.applyCommerceSubscription(ctx, payload, true)
	case "user.created", "user.updated":
		// Accounts are created locally; the platform's user events only
		// matter for linking, which subscription events carry anyway.
		return nil
	case "user.deleted":
		return r.handleCommerceUserDeleted(ctx, payload)
	default:
		log.Printf("commerce webhook: ignoring event type %q", eventType)
		return nil
	}
}

func (r *Reconciler) applyCommerceSubscription(ctx context.Context, payload []byte, deleted bool) error {
	var sub commerceSubscription
	if err := json.Unmarshal(payload, &sub); err != nil {
		return fmt.Errorf("commerce subscription payload: %w", err)
	}

	accountID, ok := r.commerceAccountID(sub.Metadata)
	if !ok {
		log.Printf("commerce webhook: subscription %s has no resolvable account, dropping", sub.ID)
		return nil
	}

	if deleted {
		now := r.now()
		return r.ApplyChange(ctx, SubscriptionChange{
			AccountID:         accountID,
			PlanID:            PlanFree,
			Status:            db_models.SubStatusCanceled,
			PeriodStart:       now.Unix(),
			PeriodEnd:         now.AddDate(freePeriodYears, 0, 0).Unix(),
			CancelAtPeriodEnd: true,
			ProviderSubID:     sub.ID,
			Raw:               payload,
		})
	}

	item, ok := activeCommerceItem(sub.Items)
	if !ok {
		log.Printf("commerce webhook: subscription %s has no active item, dropping", sub.ID)
		return nil
	}

	planID := r.catalog.ResolvePlanID(PlanHint{
		InternalID: sub.Metadata["plan_id"],
		Slug:       item.Plan.Slug,
		PriceCents: item.Plan.Amount,
		HasPrice:   true,
	})

	return r.ApplyChange(ctx, SubscriptionChange{
		AccountID:         accountID,
		PlanID:            planID,
		Status:            commerceStatus(sub.Status),
		PeriodStart:       item.PeriodStart,
		PeriodEnd:         item.PeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		ProviderSubID:     sub.ID,
		Raw:               payload,
	})
}

func (r *Reconciler) handleCommerceUserDeleted(ctx context.Context, payload []byte) error {
	var user commerceUser
	if err := json.Unmarshal(payload, &user); err != nil {
		return fmt.Errorf("commerce user payload: %w", err)
	}

	accountID, ok := r.commerceAccountID(user.Metadata)
	if !ok {
		log.Printf("commerce webhook: user %s has no resolvable account, dropping", user.ID)
		return nil
	}

	// Account deletion is the one case where the subscription record goes
	// away. Usage rows stay for bookkeeping.
	if err := r.subscriptionRepo.DeleteByAccountID(ctx, accountID); err != nil {
		return fmt.Errorf("commerce user delete: subscription: %w", err)
	}
	return r.accountRepo.Delete(ctx, accountID.String())
}

func (r *Reconciler) commerceAccountID(metadata map[string]string) (uuid.UUID, bool) {
	raw := metadata["account_id"]
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// activeCommerceItem picks the item the plan is derived from. Multi-item
// payloads have been observed from the provider; the first active item wins.
func activeCommerceItem(items []commerceItem) (commerceItem, bool) {
	for _, item := range items {
		if item.Status == "active" {
			return item, true
		}
	}
	return commerceItem{}, false
}

func commerceStatus(status string) db_models.SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return db_models.SubStatusActive
	case "past_due":
		return db_models.SubStatusPastDue
	case "unpaid":
		return db_models.SubStatusUnpaid
	case "canceled", "ended":
		return db_models.SubStatusCanceled
	default:
		return db_models.SubStatusUnpaid
	}
}
