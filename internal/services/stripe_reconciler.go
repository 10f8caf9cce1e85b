package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/subscription"
	"rolepeek/internal/models/db_models"
	"rolepeek/pkg/utils"
)

// ProviderSubscriptionFetcher re-reads subscription detail from the
// payments provider. Behind an interface so the reconciler is testable
// without network access.
type ProviderSubscriptionFetcher interface {
	LatestForCustomer(ctx context.Context, customerID string) (*stripe.Subscription, error)
}

type stripeSubscriptionFetcher struct{}

func NewStripeSubscriptionFetcher(apiKey string) ProviderSubscriptionFetcher {
	stripe.Key = apiKey
	return &stripeSubscriptionFetcher{}
}

func (f *stripeSubscriptionFetcher) LatestForCustomer(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	var newest *stripe.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if sub.Status == stripe.SubscriptionStatusActive {
			return sub, nil
		}
		if newest == nil || sub.Created > newest.Created {
			newest = sub
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return newest, nil
}

func (r *Reconciler) HandleStripeCheckoutCompleted(ctx context.Context, payload []byte) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return fmt.Errorf("stripe checkout payload: %w", err)
	}

	accountID, ok := r.commerceAccountID(sess.Metadata)
	if !ok {
		log.Printf("stripe webhook: checkout session %s has no account metadata, dropping", sess.ID)
		return nil
	}

	planID := r.catalog.ResolvePlanID(PlanHint{InternalID: sess.Metadata["plan_id"]})

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	subID := ""
	if sess.Subscription != nil {
		subID = sess.Subscription.ID
	}

	// Checkout sessions do not carry period boundaries; start a provisional
	// month here, the customer.subscription.* event that follows corrects it.
	now := r.now()
	return r.ApplyChange(ctx, SubscriptionChange{
		AccountID:          accountID,
		PlanID:             planID,
		Status:             db_models.SubStatusActive,
		PeriodStart:        now.Unix(),
		PeriodEnd:          now.AddDate(0, 1, 0).Unix(),
		ProviderCustomerID: customerID,
		ProviderSubID:      subID,
		Raw:                payload,
	})
}

func (r *Reconciler) HandleStripeSubscriptionEvent(ctx context.Context, eventType string, payload []byte) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(payload, &sub); err != nil {
		return fmt.Errorf("stripe subscription payload: %w", err)
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	accountID, ok := r.stripeAccountID(ctx, sub.Metadata, customerID)
	if !ok {
		log.Printf("stripe webhook: subscription %s maps to no local account, dropping", sub.ID)
		return nil
	}

	if eventType == "customer.subscription.deleted" {
		now := r.now()
		return r.ApplyChange(ctx, SubscriptionChange{
			AccountID:          accountID,
			PlanID:             PlanFree,
			Status:             db_models.SubStatusCanceled,
			PeriodStart:        now.Unix(),
			PeriodEnd:          now.AddDate(freePeriodYears, 0, 0).Unix(),
			CancelAtPeriodEnd:  true,
			ProviderCustomerID: customerID,
			ProviderSubID:      sub.ID,
			Raw:                payload,
		})
	}

	return r.ApplyChange(ctx, r.normalizeStripeSubscription(&sub, accountID, payload))
}

func (r *Reconciler) normalizeStripeSubscription(sub *stripe.Subscription, accountID uuid.UUID, payload []byte) SubscriptionChange {
	hint := PlanHint{InternalID: sub.Metadata["plan_id"]}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		if price := sub.Items.Data[0].Price; price != nil {
			hint.PriceRef = price.ID
			hint.Slug = price.Nickname
			hint.PriceCents = price.UnitAmount
			hint.HasPrice = true
		}
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	return SubscriptionChange{
		AccountID:          accountID,
		PlanID:             r.catalog.ResolvePlanID(hint),
		Status:             stripeStatus(sub.Status),
		PeriodStart:        sub.CurrentPeriodStart,
		PeriodEnd:          sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		ProviderCustomerID: customerID,
		ProviderSubID:      sub.ID,
		Raw:                payload,
	}
}

// HandleStripeInvoiceEvent refreshes period and status on payment results.
// Invoices reference the subscription by provider id only, and they never
// change the plan unless new plan metadata rides along.
func (r *Reconciler) HandleStripeInvoiceEvent(ctx context.Context, eventType string, payload []byte) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(payload, &invoice); err != nil {
		return fmt.Errorf("stripe invoice payload: %w", err)
	}

	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		log.Printf("stripe webhook: invoice %s has no subscription ref, dropping", invoice.ID)
		return nil
	}

	switch eventType {
	case "invoice.payment_failed":
		err := r.subscriptionRepo.UpdateByProviderSubID(ctx, invoice.Subscription.ID, db_models.SubStatusPastDue, nil)
		if errors.Is(err, utils.ErrRecordNotFound) {
			log.Printf("stripe webhook: invoice %s references unknown subscription %s, dropping", invoice.ID, invoice.Subscription.ID)
			return nil
		}
		return err
	case "invoice.payment_succeeded":
		// handled below
	default:
		// Lifecycle events (created, finalized, upcoming) carry no payment
		// outcome; acting on them would re-activate past_due records.
		log.Printf("stripe webhook: ignoring invoice event %q for %s", eventType, invoice.ID)
		return nil
	}

	periodStart, periodEnd := invoice.PeriodStart, invoice.PeriodEnd
	if invoice.Lines != nil && len(invoice.Lines.Data) > 0 && invoice.Lines.Data[0].Period != nil {
		periodStart = invoice.Lines.Data[0].Period.Start
		periodEnd = invoice.Lines.Data[0].Period.End
	}

	fields := map[string]interface{}{
		"current_period_start": periodStart,
		"current_period_end":   periodEnd,
	}
	if invoice.SubscriptionDetails != nil {
		if planID := invoice.SubscriptionDetails.Metadata["plan_id"]; planID != "" && r.catalog.GetPlan(planID) != nil {
			fields["plan_id"] = planID
		}
	}

	err := r.subscriptionRepo.UpdateByProviderSubID(ctx, invoice.Subscription.ID, db_models.SubStatusActive, fields)
	if errors.Is(err, utils.ErrRecordNotFound) {
		log.Printf("stripe webhook: invoice %s references unknown subscription %s, dropping", invoice.ID, invoice.Subscription.ID)
		return nil
	}
	return err
}

// SyncFromProvider re-derives the record from the provider directly. This
// is the support path for webhook gaps; callers bound the context.
func (r *Reconciler) SyncFromProvider(ctx context.Context, accountID uuid.UUID) error {
	account, err := r.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return fmt.Errorf("sync: account lookup: %w", err)
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}
	if account.ProviderCustomerID == "" {
		// Never checked out, so the provider has nothing; free is the truth.
		return r.SeedFreeSubscription(ctx, accountID)
	}

	sub, err := r.fetcher.LatestForCustomer(ctx, account.ProviderCustomerID)
	if err != nil {
		return fmt.Errorf("sync: provider fetch customer=%s: %w", account.ProviderCustomerID, err)
	}
	if sub == nil {
		return r.SeedFreeSubscription(ctx, accountID)
	}

	raw, _ := json.Marshal(sub)
	return r.ApplyChange(ctx, r.normalizeStripeSubscription(sub, accountID, raw))
}

func (r *Reconciler) stripeAccountID(ctx context.Context, metadata map[string]string, customerID string) (uuid.UUID, bool) {
	if id, ok := r.commerceAccountID(metadata); ok {
		return id, true
	}
	if customerID == "" {
		return uuid.Nil, false
	}

	account, err := r.accountRepo.FindByProviderCustomerID(ctx, customerID)
	if err != nil || account == nil {
		return uuid.Nil, false
	}
	return account.ID, true
}

func stripeStatus(status stripe.SubscriptionStatus) db_models.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return db_models.SubStatusActive
	case stripe.SubscriptionStatusPastDue:
		return db_models.SubStatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return db_models.SubStatusCanceled
	default:
		return db_models.SubStatusUnpaid
	}
}
