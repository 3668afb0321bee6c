package model

import "time"

// Response is the stored answer to one question. (AssessmentID, QuestionID)
// is unique; resubmitting overwrites.
type Response struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	AssessmentID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_response_assessment_question" json:"assessment_id"`
	QuestionID       string    `gorm:"not null;uniqueIndex:idx_response_assessment_question" json:"question_id"`
	Kind             string    `gorm:"not null" json:"kind"`
	Value            *int      `json:"value,omitempty"`
	SelectedOptionID *string   `json:"selected_option_id,omitempty"`
	ResponseTimeMs   int64     `gorm:"not null;default:0" json:"response_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
