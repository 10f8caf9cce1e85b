package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"rolepeek/internal/models/db_models"
)

type fakeProviderFetcher struct {
	sub *stripe.Subscription
	err error
}

func (f *fakeProviderFetcher) LatestForCustomer(context.Context, string) (*stripe.Subscription, error) {
	return f.sub, f.err
}

func stripeSubJSON(t *testing.T, accountID uuid.UUID, status stripe.SubscriptionStatus) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":                   "sub_abc",
		"status":               status,
		"customer":             map[string]string{"id": "cus_abc"},
		"metadata":             map[string]string{"account_id": accountID.String(), "plan_id": PlanStart},
		"current_period_start": fixedNow().Unix(),
		"current_period_end":   fixedNow().AddDate(0, 1, 0).Unix(),
	})
	require.NoError(t, err)
	return payload
}

func TestHandleStripeCheckoutCompleted(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	payload, err := json.Marshal(map[string]interface{}{
		"id":           "cs_1",
		"customer":     map[string]string{"id": "cus_abc"},
		"subscription": map[string]string{"id": "sub_abc"},
		"metadata":     map[string]string{"account_id": account.ID.String(), "plan_id": PlanPro},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.HandleStripeCheckoutCompleted(ctx, payload))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanPro, sub.PlanID)
	assert.Equal(t, db_models.SubStatusActive, sub.Status)
	assert.Equal(t, "cus_abc", sub.ProviderCustomerID)
	assert.Equal(t, "sub_abc", sub.ProviderSubID)
	assert.Greater(t, sub.CurrentPeriodEnd, sub.CurrentPeriodStart, "provisional period until the subscription event lands")
}

func TestHandleStripeCheckoutWithoutAccountMetadataDropped(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	r := newReconcilerForTest(subs, newFakeAccountRepo())

	require.NoError(t, r.HandleStripeCheckoutCompleted(context.Background(), []byte(`{"id":"cs_2"}`)))
	assert.Zero(t, subs.upserts)
}

func TestHandleStripeSubscriptionUpdated(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	payload := stripeSubJSON(t, account.ID, stripe.SubscriptionStatusActive)
	require.NoError(t, r.HandleStripeSubscriptionEvent(ctx, "customer.subscription.updated", payload))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanStart, sub.PlanID)
	assert.Equal(t, db_models.SubStatusActive, sub.Status)
	assert.Equal(t, "sub_abc", sub.ProviderSubID)
}

func TestHandleStripeSubscriptionDeletedDowngradesToFree(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.HandleStripeSubscriptionEvent(ctx, "customer.subscription.updated",
		stripeSubJSON(t, account.ID, stripe.SubscriptionStatusActive)))
	require.NoError(t, r.HandleStripeSubscriptionEvent(ctx, "customer.subscription.deleted",
		stripeSubJSON(t, account.ID, stripe.SubscriptionStatusCanceled)))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanFree, sub.PlanID)
	assert.Equal(t, db_models.SubStatusCanceled, sub.Status)
}

func TestHandleStripeSubscriptionResolvesAccountByCustomer(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	require.NoError(t, accounts.SetProviderCustomerID(context.Background(), account.ID.String(), "cus_abc"))
	r := newReconcilerForTest(subs, accounts)

	// No account_id metadata; only the customer ref links it back.
	payload, err := json.Marshal(map[string]interface{}{
		"id":       "sub_abc",
		"status":   "active",
		"customer": map[string]string{"id": "cus_abc"},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.HandleStripeSubscriptionEvent(ctx, "customer.subscription.updated", payload))

	sub, lookupErr := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, lookupErr)
	require.NotNil(t, sub)
}

func TestHandleStripeInvoiceEvents(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.HandleStripeSubscriptionEvent(ctx, "customer.subscription.updated",
		stripeSubJSON(t, account.ID, stripe.SubscriptionStatusActive)))

	t.Run("payment failed marks past due", func(t *testing.T) {
		payload, err := json.Marshal(map[string]interface{}{
			"id":           "in_1",
			"subscription": map[string]string{"id": "sub_abc"},
		})
		require.NoError(t, err)
		require.NoError(t, r.HandleStripeInvoiceEvent(ctx, "invoice.payment_failed", payload))

		sub, err := subs.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.SubStatusPastDue, sub.Status)
	})

	t.Run("lifecycle invoice events carry no payment outcome", func(t *testing.T) {
		payload, err := json.Marshal(map[string]interface{}{
			"id":           "in_5",
			"subscription": map[string]string{"id": "sub_abc"},
		})
		require.NoError(t, err)
		for _, eventType := range []string{"invoice.created", "invoice.finalized", "invoice.upcoming"} {
			require.NoError(t, r.HandleStripeInvoiceEvent(ctx, eventType, payload))
		}

		sub, err := subs.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.SubStatusPastDue, sub.Status, "only a payment result may change the status")
	})

	t.Run("payment succeeded reactivates and rolls the period", func(t *testing.T) {
		newStart := fixedNow().AddDate(0, 1, 0).Unix()
		newEnd := fixedNow().AddDate(0, 2, 0).Unix()
		payload, err := json.Marshal(map[string]interface{}{
			"id":           "in_2",
			"subscription": map[string]string{"id": "sub_abc"},
			"lines": map[string]interface{}{
				"data": []map[string]interface{}{
					{"period": map[string]int64{"start": newStart, "end": newEnd}},
				},
			},
		})
		require.NoError(t, err)
		require.NoError(t, r.HandleStripeInvoiceEvent(ctx, "invoice.payment_succeeded", payload))

		sub, err := subs.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.SubStatusActive, sub.Status)
		assert.Equal(t, newStart, sub.CurrentPeriodStart)
		assert.Equal(t, newEnd, sub.CurrentPeriodEnd)
	})

	t.Run("invoice for unknown subscription is dropped", func(t *testing.T) {
		payload, err := json.Marshal(map[string]interface{}{
			"id":           "in_3",
			"subscription": map[string]string{"id": "sub_missing"},
		})
		require.NoError(t, err)
		assert.NoError(t, r.HandleStripeInvoiceEvent(ctx, "invoice.payment_succeeded", payload))
	})

	t.Run("invoice without subscription ref is dropped", func(t *testing.T) {
		assert.NoError(t, r.HandleStripeInvoiceEvent(ctx, "invoice.payment_succeeded", []byte(`{"id":"in_4"}`)))
	})
}

func TestSyncFromProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown account errors", func(t *testing.T) {
		r := newReconcilerForTest(newFakeSubscriptionRepo(), newFakeAccountRepo())
		assert.Error(t, r.SyncFromProvider(ctx, uuid.New()))
	})

	t.Run("no provider customer seeds free", func(t *testing.T) {
		subs := newFakeSubscriptionRepo()
		accounts := newFakeAccountRepo()
		account := seedAccount(t, accounts)
		r := newReconcilerForTest(subs, accounts)

		require.NoError(t, r.SyncFromProvider(ctx, account.ID))
		sub, err := subs.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, PlanFree, sub.PlanID)
	})

	t.Run("provider subscription is normalized and applied", func(t *testing.T) {
		subs := newFakeSubscriptionRepo()
		accounts := newFakeAccountRepo()
		account := seedAccount(t, accounts)
		require.NoError(t, accounts.SetProviderCustomerID(ctx, account.ID.String(), "cus_abc"))

		r := newReconcilerForTest(subs, accounts)
		r.fetcher = &fakeProviderFetcher{sub: &stripe.Subscription{
			ID:                 "sub_abc",
			Status:             stripe.SubscriptionStatusActive,
			Customer:           &stripe.Customer{ID: "cus_abc"},
			Metadata:           map[string]string{"plan_id": PlanPro},
			CurrentPeriodStart: fixedNow().Unix(),
			CurrentPeriodEnd:   fixedNow().AddDate(0, 1, 0).Unix(),
		}}

		require.NoError(t, r.SyncFromProvider(ctx, account.ID))
		sub, err := subs.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, PlanPro, sub.PlanID)
		assert.Equal(t, db_models.SubStatusActive, sub.Status)
	})
}

func TestStripeStatusMapping(t *testing.T) {
	assert.Equal(t, db_models.SubStatusActive, stripeStatus(stripe.SubscriptionStatusTrialing))
	assert.Equal(t, db_models.SubStatusPastDue, stripeStatus(stripe.SubscriptionStatusPastDue))
	assert.Equal(t, db_models.SubStatusCanceled, stripeStatus(stripe.SubscriptionStatusIncompleteExpired))
	assert.Equal(t, db_models.SubStatusUnpaid, stripeStatus(stripe.SubscriptionStatusIncomplete))
}
