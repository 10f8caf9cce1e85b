package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rolepeek/internal/models/db_models"
)

type IDayInRoleRepository interface {
	Insert(ctx context.Context, record *db_models.DayInRole) error
	FindById(ctx context.Context, id string) (*db_models.DayInRole, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]db_models.DayInRole, error)
}

type dayInRoleRepository struct {
	db *gorm.DB
}

func NewDayInRoleRepository(db *gorm.DB) IDayInRoleRepository {
	return &dayInRoleRepository{db: db}
}

func (d *dayInRoleRepository) Insert(ctx context.Context, record *db_models.DayInRole) error {
	return d.db.WithContext(ctx).Create(record).Error
}

func (d *dayInRoleRepository) FindById(ctx context.Context, id string) (*db_models.DayInRole, error) {
	var record db_models.DayInRole
	err := d.db.WithContext(ctx).First(&record, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

func (d *dayInRoleRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]db_models.DayInRole, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []db_models.DayInRole
	err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
