package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Assessment is one answering session of a user for one assessment type.
type Assessment struct {
	ID             string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string            `gorm:"not null;index:idx_assessment_user_type" json:"user_id"`
	AssessmentType string            `gorm:"not null;index:idx_assessment_user_type" json:"assessment_type"`
	BankVersion    int               `gorm:"not null" json:"bank_version"`
	Status         string            `gorm:"not null;default:'in_progress';index" json:"status"`
	StartedAt      time.Time         `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	AbandonedAt    *time.Time        `json:"abandoned_at,omitempty"`
	MicroIntake    datatypes.JSONMap `json:"micro_intake,omitempty"`
	Responses      []Response        `gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"responses,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
}
