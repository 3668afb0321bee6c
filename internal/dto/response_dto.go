package dto

import "time"

type AssessmentDTO struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	AssessmentType string                 `json:"assessment_type"`
	BankVersion    int                    `json:"bank_version"`
	Status         string                 `json:"status"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	AbandonedAt    *time.Time             `json:"abandoned_at,omitempty"`
	MicroIntake    map[string]interface{} `json:"micro_intake,omitempty" copier:"-"`
	AnsweredCount  int                    `json:"answered_count"`
	TotalQuestions int                    `json:"total_questions"`
}

type ResponseDTO struct {
	AssessmentID     string    `json:"assessment_id"`
	QuestionID       string    `json:"question_id"`
	Kind             string    `json:"kind"`
	Value            *int      `json:"value,omitempty"`
	SelectedOptionID *string   `json:"selected_option_id,omitempty"`
	ResponseTimeMs   int64     `json:"response_time_ms"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ResultDTO is the contract handed to content consumers.
type ResultDTO struct {
	ID               string             `json:"id"`
	AssessmentID     string             `json:"assessment_id"`
	UserID           string             `json:"user_id"`
	AssessmentType   string             `json:"assessment_type"`
	BankVersion      int                `json:"bank_version"`
	CategoryScores   map[string]float64 `json:"category_scores"`
	Primary          string             `json:"primary"`
	Secondary        *string            `json:"secondary,omitempty"`
	ValidityWarnings []string           `json:"validity_warnings"`
	CompletionRate   float64            `json:"completion_rate"`
	ResponseVariance float64            `json:"response_variance"`
	ConfidenceScore  int                `json:"confidence_score"`
	BlindspotIndex   int                `json:"blindspot_index"`
	CreatedAt        time.Time          `json:"created_at"`
}

type ProgressDTO struct {
	UserID           string     `json:"user_id"`
	AssessmentType   string     `json:"assessment_type"`
	LastAssessmentID string     `json:"last_assessment_id,omitempty"`
	AssessmentCount  int        `json:"assessment_count"`
	CanRetakeAfter   *time.Time `json:"can_retake_after,omitempty"`
	CanRetakeNow     bool       `json:"can_retake_now" copier:"-"`
}

type InsightDTO struct {
	AssessmentID   string    `json:"assessment_id"`
	ResultID       string    `json:"result_id"`
	Source         string    `json:"source"`
	Profile        string    `json:"profile"`
	Interpretation string    `json:"interpretation"`
	ContentKeys    []string  `json:"content_keys"`
	CreatedAt      time.Time `json:"created_at"`
}

// ErrorResponse carries a message plus structured detail such as
// completion_rate or can_retake_after.
type ErrorResponse struct {
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
