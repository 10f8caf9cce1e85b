package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"rolepeek/internal/models/db_models"
)

type IInterviewRepository interface {
	InsertWithQuestions(ctx context.Context, interview *db_models.Interview, questions []db_models.InterviewQuestion) error
	FindById(ctx context.Context, id string) (*db_models.Interview, error)
	ListQuestions(ctx context.Context, interviewID uuid.UUID) ([]db_models.InterviewQuestion, error)
	SaveAnswers(ctx context.Context, interviewID uuid.UUID, answers map[uuid.UUID]string) error
	SetFeedback(ctx context.Context, interviewID uuid.UUID, feedback string) error
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) IInterviewRepository {
	return &interviewRepository{db: db}
}

func (i *interviewRepository) InsertWithQuestions(ctx context.Context, interview *db_models.Interview, questions []db_models.InterviewQuestion) error {
	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interview).Error; err != nil {
			return err
		}
		for idx := range questions {
			questions[idx].InterviewID = interview.ID
		}
		return tx.Create(&questions).Error
	})
}

func (i *interviewRepository) FindById(ctx context.Context, id string) (*db_models.Interview, error) {
	var interview db_models.Interview
	err := i.db.WithContext(ctx).First(&interview, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &interview, nil
}

func (i *interviewRepository) ListQuestions(ctx context.Context, interviewID uuid.UUID) ([]db_models.InterviewQuestion, error) {
	var questions []db_models.InterviewQuestion
	err := i.db.WithContext(ctx).
		Order("position ASC").
		Find(&questions, "interview_id = ?", interviewID).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (i *interviewRepository) SaveAnswers(ctx context.Context, interviewID uuid.UUID, answers map[uuid.UUID]string) error {
	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for questionID, answer := range answers {
			res := tx.Model(&db_models.InterviewQuestion{}).
				Where("id = ? AND interview_id = ?", questionID, interviewID).
				Update("answer", answer)
			if res.Error != nil {
				return res.Error
			}
		}
		return tx.Model(&db_models.Interview{}).
			Where("id = ?", interviewID).
			Update("status", db_models.InterviewStatusAnswered).Error
	})
}

func (i *interviewRepository) SetFeedback(ctx context.Context, interviewID uuid.UUID, feedback string) error {
	return i.db.WithContext(ctx).
		Model(&db_models.Interview{}).
		Where("id = ?", interviewID).
		Updates(map[string]interface{}{
			"feedback": feedback,
			"status":   db_models.InterviewStatusEvaluated,
		}).Error
}
