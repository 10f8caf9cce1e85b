package db_models

import (
	"github.com/google/uuid"
)

type InterviewStatus string

const (
	InterviewStatusPending   InterviewStatus = "pending"
	InterviewStatusAnswered  InterviewStatus = "answered"
	InterviewStatusEvaluated InterviewStatus = "evaluated"
)

type Interview struct {
	BaseModel
	AccountID   uuid.UUID `gorm:"index"`
	DayInRoleID uuid.UUID `gorm:"index"`

	// QuestionSetID groups the questions generated in one request; the UI
	// addresses the set independently of the interview session.
	QuestionSetID uuid.UUID `gorm:"index"`

	Status   InterviewStatus `gorm:"size:16;default:pending"`
	Feedback *string         `gorm:"type:text"`

	Account   Account   `gorm:"foreignKey:AccountID"`
	DayInRole DayInRole `gorm:"foreignKey:DayInRoleID"`
	Questions []InterviewQuestion
}

type InterviewQuestion struct {
	BaseModel
	InterviewID uuid.UUID `gorm:"index"`
	Position    int       `gorm:"not null"`
	Question    string    `gorm:"type:text"`
	Answer      *string   `gorm:"type:text"`
}
