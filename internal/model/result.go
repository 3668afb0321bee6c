package model

import (
	"time"

	"gorm.io/datatypes"
)

// Result is the immutable outcome of a completed Assessment.
type Result struct {
	ID               string                                 `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AssessmentID     string                                 `gorm:"type:varchar(36);not null;uniqueIndex" json:"assessment_id"`
	AssessmentType   string                                 `gorm:"not null" json:"assessment_type"`
	BankVersion      int                                    `gorm:"not null" json:"bank_version"`
	CategoryScores   datatypes.JSONType[map[string]float64] `json:"category_scores"`
	Primary          string                                 `gorm:"column:primary_category;not null" json:"primary"`
	Secondary        *string                                `gorm:"column:secondary_category" json:"secondary,omitempty"`
	ValidityWarnings datatypes.JSONType[[]string]           `json:"validity_warnings"`
	CompletionRate   float64                                `json:"completion_rate"`
	ResponseVariance float64                                `json:"response_variance"`
	ConfidenceScore  int                                    `json:"confidence_score"`
	BlindspotIndex   int                                    `json:"blindspot_index"`
	CreatedAt        time.Time                              `json:"created_at"`
}
