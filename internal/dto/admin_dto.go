package dto

// AdminOptionDTO exposes the scoring mapping of a scenario option.
type AdminOptionDTO struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
	Weight     float64  `json:"weight"`
	Order      int      `json:"order"`
}

// AdminQuestionDTO is the full scoring configuration of one question.
type AdminQuestionDTO struct {
	ID            string           `json:"id"`
	Kind          string           `json:"kind"`
	Text          string           `json:"text"`
	Category      string           `json:"category,omitempty"`
	ReverseScored bool             `json:"reverse_scored"`
	Weight        float64          `json:"weight"`
	Order         int              `json:"order"`
	Options       []AdminOptionDTO `json:"options,omitempty"`
}

// BankDetailDTO is the admin view of a question bank.
type BankDetailDTO struct {
	AssessmentTypeDTO
	Questions []AdminQuestionDTO `json:"questions"`
	// CategoryMax is the highest raw score each category can reach.
	CategoryMax map[string]float64 `json:"category_max"`
}
