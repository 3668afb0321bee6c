package model

import "time"

// Progress tracks completed assessments per user and type.
type Progress struct {
	UserID           string     `gorm:"primaryKey" json:"user_id"`
	AssessmentType   string     `gorm:"primaryKey" json:"assessment_type"`
	LastAssessmentID string     `gorm:"type:varchar(36)" json:"last_assessment_id"`
	AssessmentCount  int        `gorm:"not null;default:0" json:"assessment_count"`
	CanRetakeAfter   *time.Time `json:"can_retake_after,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Progress) TableName() string { return "assessment_progress" }
