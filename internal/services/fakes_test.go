package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"rolepeek/internal/models/db_models"
	"rolepeek/pkg/utils"
)

// In-memory stands-ins for the gorm repositories. They implement the same
// contracts the real ones do, including the upsert-on-account semantics.

type fakeSubscriptionRepo struct {
	mu      sync.Mutex
	byAcct  map[uuid.UUID]*db_models.Subscription
	failAll bool
	upserts int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{byAcct: map[uuid.UUID]*db_models.Subscription{}}
}

func (f *fakeSubscriptionRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, utils.ErrDatabaseError
	}
	sub, ok := f.byAcct[accountID]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubscriptionRepo) GetByProviderSubID(_ context.Context, providerSubID string) (*db_models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.byAcct {
		if sub.ProviderSubID == providerSubID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptionRepo) Create(_ context.Context, sub *db_models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byAcct[sub.AccountID]; exists {
		return utils.ErrSubscriptionExists
	}
	copied := *sub
	f.byAcct[sub.AccountID] = &copied
	return nil
}

func (f *fakeSubscriptionRepo) Upsert(_ context.Context, sub *db_models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return utils.ErrDatabaseError
	}
	f.upserts++
	copied := *sub
	if existing, ok := f.byAcct[sub.AccountID]; ok {
		copied.ID = existing.ID
	}
	f.byAcct[sub.AccountID] = &copied
	return nil
}

func (f *fakeSubscriptionRepo) UpdateByAccountID(_ context.Context, accountID uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.byAcct[accountID]
	if !ok {
		return utils.ErrRecordNotFound
	}
	applySubscriptionFields(sub, fields)
	return nil
}

func (f *fakeSubscriptionRepo) UpdateByProviderSubID(_ context.Context, providerSubID string, status db_models.SubscriptionStatus, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.byAcct {
		if sub.ProviderSubID == providerSubID {
			sub.Status = status
			applySubscriptionFields(sub, fields)
			return nil
		}
	}
	return utils.ErrRecordNotFound
}

func (f *fakeSubscriptionRepo) DeleteByAccountID(_ context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byAcct, accountID)
	return nil
}

func applySubscriptionFields(sub *db_models.Subscription, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "plan_id":
			sub.PlanID = value.(string)
		case "status":
			if s, ok := value.(db_models.SubscriptionStatus); ok {
				sub.Status = s
			} else {
				sub.Status = db_models.SubscriptionStatus(value.(string))
			}
		case "current_period_start":
			sub.CurrentPeriodStart = value.(int64)
		case "current_period_end":
			sub.CurrentPeriodEnd = value.(int64)
		case "cancel_at_period_end":
			sub.CancelAtPeriodEnd = value.(bool)
		}
	}
}

type fakeUsageRepo struct {
	mu      sync.Mutex
	rows    map[string]*db_models.UsagePeriod
	failAll bool
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{rows: map[string]*db_models.UsagePeriod{}}
}

func usageKey(accountID uuid.UUID, periodStart int64) string {
	return fmt.Sprintf("%s/%d", accountID, periodStart)
}

func (f *fakeUsageRepo) GetOrCreate(_ context.Context, accountID uuid.UUID, periodStart, periodEnd int64) (*db_models.UsagePeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, utils.ErrDatabaseError
	}
	row := f.get(accountID, periodStart, periodEnd)
	copied := *row
	return &copied, nil
}

func (f *fakeUsageRepo) get(accountID uuid.UUID, periodStart, periodEnd int64) *db_models.UsagePeriod {
	key := usageKey(accountID, periodStart)
	if row, ok := f.rows[key]; ok {
		return row
	}
	row := &db_models.UsagePeriod{
		AccountID:   accountID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		ResetAt:     periodEnd,
	}
	f.rows[key] = row
	return row
}

func (f *fakeUsageRepo) IncrementDayInRole(_ context.Context, accountID uuid.UUID, periodStart, periodEnd int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return utils.ErrDatabaseError
	}
	f.get(accountID, periodStart, periodEnd).DayInRoleUsed++
	return nil
}

func (f *fakeUsageRepo) IncrementInterview(_ context.Context, accountID uuid.UUID, periodStart, periodEnd int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return utils.ErrDatabaseError
	}
	f.get(accountID, periodStart, periodEnd).InterviewsUsed++
	return nil
}

func (f *fakeUsageRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]db_models.UsagePeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.UsagePeriod
	for _, row := range f.rows {
		if row.AccountID == accountID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	mu     sync.Mutex
	byID   map[string]*db_models.Account
	byCust map[string]*db_models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:   map[string]*db_models.Account{},
		byCust: map[string]*db_models.Account{},
	}
}

func (f *fakeAccountRepo) add(account *db_models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[account.ID.String()] = account
	if account.ProviderCustomerID != "" {
		f.byCust[account.ProviderCustomerID] = account
	}
}

func (f *fakeAccountRepo) Insert(_ context.Context, account *db_models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.add(account)
	return nil
}

func (f *fakeAccountRepo) FindById(_ context.Context, id string) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byID {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByProviderCustomerID(_ context.Context, customerID string) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byCust[customerID], nil
}

func (f *fakeAccountRepo) SetProviderCustomerID(_ context.Context, id string, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.byID[id]
	if !ok {
		return utils.ErrAccountNotFound
	}
	account.ProviderCustomerID = customerID
	f.byCust[customerID] = account
	return nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}
