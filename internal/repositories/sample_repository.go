package repositories

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"rolepeek/internal/models/db_models"
)

type ISampleRepository interface {
	ListByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.SampleDayInRole, error)
	ListRecent(ctx context.Context, limit int) ([]db_models.SampleDayInRole, error)
	Insert(ctx context.Context, sample *db_models.SampleDayInRole) error
}

type sampleRepository struct {
	db *gorm.DB
}

func NewSampleRepository(db *gorm.DB) ISampleRepository {
	return &sampleRepository{db: db}
}

func (s *sampleRepository) ListByVector(ctx context.Context, vector pgvector.Vector, limit int) ([]db_models.SampleDayInRole, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var results []db_models.SampleDayInRole

	query := `
        SELECT *
        FROM sample_day_in_roles
        WHERE (1 - (embedding <=> $1)) > 0.6
        ORDER BY embedding <=> $1
        LIMIT $2
    `

	err := s.db.WithContext(ctx).Raw(query, vector.String(), limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *sampleRepository) ListRecent(ctx context.Context, limit int) ([]db_models.SampleDayInRole, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var results []db_models.SampleDayInRole
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *sampleRepository) Insert(ctx context.Context, sample *db_models.SampleDayInRole) error {
	return s.db.WithContext(ctx).Create(sample).Error
}
