package dto

// StartAssessmentRequest opens a new assessment session.
type StartAssessmentRequest struct {
	UserID         string                 `json:"user_id" binding:"required" validate:"required"`
	AssessmentType string                 `json:"assessment_type" binding:"required" validate:"required"`
	MicroIntake    map[string]interface{} `json:"micro_intake,omitempty"`
}

// AnswerRequest answers one question. Statements carry Value (1-5),
// scenarios carry SelectedOptionID.
type AnswerRequest struct {
	QuestionID       string  `json:"question_id" binding:"required" validate:"required"`
	Value            *int    `json:"value,omitempty"`
	SelectedOptionID *string `json:"selected_option_id,omitempty"`
	ResponseTimeMs   int64   `json:"response_time_ms" binding:"gte=0" validate:"gte=0"`
}

// BatchAnswerRequest answers several questions atomically.
type BatchAnswerRequest struct {
	Answers []AnswerRequest `json:"answers" binding:"required,min=1,dive" validate:"required,min=1,dive"`
}
