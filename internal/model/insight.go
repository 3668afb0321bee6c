package model

import (
	"time"

	"gorm.io/datatypes"
)

// Insight sources.
const (
	InsightSourceGemini   = "gemini"
	InsightSourceTemplate = "template"
)

// Insight is narrative follow-up content derived from a Result.
type Insight struct {
	ID             uint                         `gorm:"primarykey" json:"id"`
	AssessmentID   string                       `gorm:"type:varchar(36);not null;uniqueIndex" json:"assessment_id"`
	ResultID       string                       `gorm:"type:varchar(36);not null" json:"result_id"`
	Source         string                       `gorm:"not null" json:"source"`
	Profile        string                       `gorm:"type:text" json:"profile"`
	Interpretation string                       `gorm:"type:text" json:"interpretation"`
	ContentKeys    datatypes.JSONType[[]string] `json:"content_keys"`
	CreatedAt      time.Time                    `json:"created_at"`
}
