package dto

type CategoryDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type IntakeFieldDTO struct {
	Key       string `json:"key"`
	Kind      string `json:"kind"`
	Min       *int   `json:"min,omitempty"`
	Max       *int   `json:"max,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	Required  bool   `json:"required"`
}

// AssessmentTypeDTO summarises one question bank.
type AssessmentTypeDTO struct {
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	Version         int              `json:"version"`
	Categories      []CategoryDTO    `json:"categories"`
	QuestionCount   int              `json:"question_count"`
	RetakeAfterDays int              `json:"retake_after_days"`
	Intake          []IntakeFieldDTO `json:"intake"`
}

// OptionDTO is a scenario option as shown to a respondent.
type OptionDTO struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// QuestionDTO is a question as shown to a respondent; scoring metadata is
// left out.
type QuestionDTO struct {
	ID      string      `json:"id"`
	Kind    string      `json:"kind"`
	Text    string      `json:"text"`
	Order   int         `json:"order"`
	Options []OptionDTO `json:"options,omitempty"`
}
