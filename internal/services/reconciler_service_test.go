package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rolepeek/internal/models/db_models"
)

func newReconcilerForTest(subs *fakeSubscriptionRepo, accounts *fakeAccountRepo) *Reconciler {
	return &Reconciler{
		subscriptionRepo: subs,
		accountRepo:      accounts,
		catalog:          NewPlanCatalog(),
		now:              fixedNow,
	}
}

func seedAccount(t *testing.T, accounts *fakeAccountRepo) *db_models.Account {
	t.Helper()
	account := &db_models.Account{Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8]), Role: "user"}
	require.NoError(t, accounts.Insert(context.Background(), account))
	return account
}

func TestApplyChangeIsIdempotent(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	change := SubscriptionChange{
		AccountID:          account.ID,
		PlanID:             PlanStart,
		Status:             db_models.SubStatusActive,
		PeriodStart:        fixedNow().Unix(),
		PeriodEnd:          fixedNow().AddDate(0, 1, 0).Unix(),
		ProviderCustomerID: "cus_123",
		ProviderSubID:      "sub_123",
	}

	ctx := context.Background()
	require.NoError(t, r.ApplyChange(ctx, change))
	first, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)

	// Redelivery of the same event lands on identical state.
	require.NoError(t, r.ApplyChange(ctx, change))
	second, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)

	assert.Equal(t, first.PlanID, second.PlanID)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.ProviderSubID, second.ProviderSubID)
	assert.Equal(t, first.CurrentPeriodStart, second.CurrentPeriodStart)
	assert.Equal(t, 2, subs.upserts)
}

func TestApplyChangeUnknownAccountDropped(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	r := newReconcilerForTest(subs, newFakeAccountRepo())

	err := r.ApplyChange(context.Background(), SubscriptionChange{
		AccountID: uuid.New(),
		PlanID:    PlanPro,
		Status:    db_models.SubStatusActive,
	})

	require.NoError(t, err, "unknown accounts are dropped, not errors, so the provider stops retrying")
	assert.Zero(t, subs.upserts)
}

func TestApplyChangeUnknownPlanStoredAsFree(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.ApplyChange(ctx, SubscriptionChange{
		AccountID: account.ID,
		PlanID:    "legacy-gold",
		Status:    db_models.SubStatusActive,
	}))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanFree, sub.PlanID)
}

func TestApplyChangeLinksProviderCustomer(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.ApplyChange(ctx, SubscriptionChange{
		AccountID:          account.ID,
		PlanID:             PlanStart,
		Status:             db_models.SubStatusActive,
		ProviderCustomerID: "cus_789",
	}))

	linked, err := accounts.FindByProviderCustomerID(ctx, "cus_789")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, account.ID, linked.ID)
}

func TestSeedFreeSubscription(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.SeedFreeSubscription(ctx, account.ID))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanFree, sub.PlanID)
	assert.Equal(t, db_models.SubStatusActive, sub.Status)
	assert.Greater(t, sub.CurrentPeriodEnd, sub.CurrentPeriodStart)

	// Seeding again (signup retry, webhook race) keeps a single record.
	require.NoError(t, r.SeedFreeSubscription(ctx, account.ID))
	again, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.AccountID, again.AccountID)
}

func commerceSubPayload(t *testing.T, accountID uuid.UUID, status, slug string, amount int64) []byte {
	t.Helper()
	payload, err := json.Marshal(commerceSubscription{
		ID:     "csub_1",
		Status: status,
		Items: []commerceItem{
			{
				Status:      "active",
				Plan:        commercePlan{Slug: slug, Amount: amount},
				PeriodStart: fixedNow().Unix(),
				PeriodEnd:   fixedNow().AddDate(0, 1, 0).Unix(),
			},
		},
		Metadata: map[string]string{"account_id": accountID.String()},
	})
	require.NoError(t, err)
	return payload
}

func TestHandleCommerceEventSubscriptionCreated(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	payload := commerceSubPayload(t, account.ID, "active", "Pro Monthly", 1900)
	require.NoError(t, r.HandleCommerceEvent(ctx, "subscription.created", payload))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanPro, sub.PlanID)
	assert.Equal(t, db_models.SubStatusActive, sub.Status)
	assert.Equal(t, "csub_1", sub.ProviderSubID)
}

func TestHandleCommerceEventSubscriptionDeleted(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.HandleCommerceEvent(ctx, "subscription.created",
		commerceSubPayload(t, account.ID, "active", "starter", 900)))

	deletedPayload, err := json.Marshal(commerceSubscription{
		ID:       "csub_1",
		Status:   "canceled",
		Metadata: map[string]string{"account_id": account.ID.String()},
	})
	require.NoError(t, err)
	require.NoError(t, r.HandleCommerceEvent(ctx, "subscription.deleted", deletedPayload))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanFree, sub.PlanID)
	assert.Equal(t, db_models.SubStatusCanceled, sub.Status)
}

func TestHandleCommerceEventMissingAccountMetadata(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	r := newReconcilerForTest(subs, newFakeAccountRepo())

	payload, err := json.Marshal(commerceSubscription{ID: "csub_2", Status: "active"})
	require.NoError(t, err)

	require.NoError(t, r.HandleCommerceEvent(context.Background(), "subscription.created", payload))
	assert.Zero(t, subs.upserts)
}

func TestHandleCommerceEventUserDeleted(t *testing.T) {
	subs := newFakeSubscriptionRepo()
	accounts := newFakeAccountRepo()
	account := seedAccount(t, accounts)
	r := newReconcilerForTest(subs, accounts)

	ctx := context.Background()
	require.NoError(t, r.SeedFreeSubscription(ctx, account.ID))

	payload, err := json.Marshal(commerceUser{
		ID:       "cuser_1",
		Metadata: map[string]string{"account_id": account.ID.String()},
	})
	require.NoError(t, err)
	require.NoError(t, r.HandleCommerceEvent(ctx, "user.deleted", payload))

	sub, err := subs.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	gone, err := accounts.FindById(ctx, account.ID.String())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestHandleCommerceEventIgnoresUnknownTypes(t *testing.T) {
	r := newReconcilerForTest(newFakeSubscriptionRepo(), newFakeAccountRepo())
	assert.NoError(t, r.HandleCommerceEvent(context.Background(), "refund.created", []byte(`{}`)))
	assert.NoError(t, r.HandleCommerceEvent(context.Background(), "user.created", []byte(`{}`)))
}

func TestCommerceStatusMapping(t *testing.T) {
	assert.Equal(t, db_models.SubStatusActive, commerceStatus("trialing"))
	assert.Equal(t, db_models.SubStatusPastDue, commerceStatus("past_due"))
	assert.Equal(t, db_models.SubStatusCanceled, commerceStatus("ended"))
	assert.Equal(t, db_models.SubStatusUnpaid, commerceStatus("something_new"))
}
