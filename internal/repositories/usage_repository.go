package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"rolepeek/internal/models/db_models"
)

// IUsageRepository tracks per-account generation counters per billing
// window. Rows are only ever created and incremented; rollover means a new
// row for the new window, old rows keep their counts.
type IUsageRepository interface {
	GetOrCreate(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) (*db_models.UsagePeriod, error)
	IncrementDayInRole(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) error
	IncrementInterview(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.UsagePeriod, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) IUsageRepository {
	return &usageRepository{db: db}
}

// GetOrCreate relies on the (account_id, period_start) unique index:
// concurrent callers race on the insert, one wins, everyone re-reads.
func (u *usageRepository) GetOrCreate(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) (*db_models.UsagePeriod, error) {
	row := db_models.UsagePeriod{
		AccountID:   accountID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		ResetAt:     periodEnd,
	}

	err := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "period_start"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	var current db_models.UsagePeriod
	err = u.db.WithContext(ctx).
		First(&current, "account_id = ? AND period_start = ?", accountID, periodStart).Error
	if err != nil {
		return nil, err
	}

	return &current, nil
}

func (u *usageRepository) IncrementDayInRole(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) error {
	return u.increment(ctx, accountID, periodStart, periodEnd, "day_in_role_used")
}

func (u *usageRepository) IncrementInterview(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64) error {
	return u.increment(ctx, accountID, periodStart, periodEnd, "interviews_used")
}

// increment bumps the counter server-side so concurrent generations for the
// same account never overwrite each other.
func (u *usageRepository) increment(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd int64, column string) error {
	res := u.db.WithContext(ctx).
		Model(&db_models.UsagePeriod{}).
		Where("account_id = ? AND period_start = ?", accountID, periodStart).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row yet for this window; create it and retry once.
	if _, err := u.GetOrCreate(ctx, accountID, periodStart, periodEnd); err != nil {
		return err
	}

	res = u.db.WithContext(ctx).
		Model(&db_models.UsagePeriod{}).
		Where("account_id = ? AND period_start = ?", accountID, periodStart).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("usage period row vanished during increment")
	}
	return nil
}

func (u *usageRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]db_models.UsagePeriod, error) {
	var rows []db_models.UsagePeriod
	err := u.db.WithContext(ctx).
		Order("period_start DESC").
		Find(&rows, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
