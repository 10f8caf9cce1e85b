package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DayInRoleInputType string

const (
	DayInRoleInputText DayInRoleInputType = "text"
	DayInRoleInputURL  DayInRoleInputType = "url"
)

// DayInRole is a generated "day in the role" preview built from a job
// posting. Schedule holds the generated hour-by-hour blocks as jsonb.
type DayInRole struct {
	BaseModel
	AccountID uuid.UUID `gorm:"index"`

	Title    string
	Company  string
	Language string `gorm:"size:8;default:en"`

	Summary  string         `gorm:"type:text"`
	Schedule datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Skills   datatypes.JSON `gorm:"type:jsonb;default:'[]'"`

	InputType DayInRoleInputType `gorm:"size:8;default:text"`
	SourceURL string

	// IsFallback marks placeholder content persisted when the model output
	// could not be parsed. The caller still gets a record either way.
	IsFallback bool `gorm:"default:false"`

	Account Account `gorm:"foreignKey:AccountID"`
}
