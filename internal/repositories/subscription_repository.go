package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"rolepeek/internal/models/db_models"
	"rolepeek/pkg/utils"
)

// ISubscriptionRepository is the canonical subscription store: one row per
// account, written by signup and the billing reconciler. All reconciler
// writes go through Upsert so webhook retries are harmless.
type ISubscriptionRepository interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error)
	GetByProviderSubID(ctx context.Context, providerSubID string) (*db_models.Subscription, error)
	Create(ctx context.Context, sub *db_models.Subscription) error
	Upsert(ctx context.Context, sub *db_models.Subscription) error
	UpdateByAccountID(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error
	UpdateByProviderSubID(ctx context.Context, providerSubID string, status db_models.SubscriptionStatus, fields map[string]interface{}) error
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) ISubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *subscriptionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).First(&sub, "account_id = ?", accountID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (s *subscriptionRepository) GetByProviderSubID(ctx context.Context, providerSubID string) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).First(&sub, "provider_sub_id = ?", providerSubID).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &sub, nil
}

func (s *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	err := s.db.WithContext(ctx).Create(sub).Error
	if isUniqueViolation(err) {
		return utils.ErrSubscriptionExists
	}
	return err
}

// Upsert inserts or merges on account_id. Applying the same fields twice
// leaves the row identical, which is what makes webhook retries safe.
func (s *subscriptionRepository) Upsert(ctx context.Context, sub *db_models.Subscription) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_id", "status",
				"provider_customer_id", "provider_sub_id",
				"current_period_start", "current_period_end",
				"cancel_at_period_end", "metadata", "updated_at",
			}),
		}).
		Create(sub).Error
}

func (s *subscriptionRepository) UpdateByAccountID(ctx context.Context, accountID uuid.UUID, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("account_id = ?", accountID).
		Updates(fields)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

func (s *subscriptionRepository) UpdateByProviderSubID(ctx context.Context, providerSubID string, status db_models.SubscriptionStatus, fields map[string]interface{}) error {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = status

	res := s.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("provider_sub_id = ?", providerSubID).
		Updates(fields)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

func (s *subscriptionRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Delete(&db_models.Subscription{}, "account_id = ?", accountID).Error
}
