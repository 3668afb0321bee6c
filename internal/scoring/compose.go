package scoring

import (
	"fmt"
	"math"

	"github.com/lshigami/heartscan/internal/questionbank"
)

// IncompleteAssessmentError is returned by Compose while questions remain
// unanswered.
type IncompleteAssessmentError struct {
	CompletionRate     float64
	MissingQuestionIDs []string
}

func (e *IncompleteAssessmentError) Error() string {
	return fmt.Sprintf("assessment incomplete: %.1f%% answered, %d question(s) missing", e.CompletionRate, len(e.MissingQuestionIDs))
}

// Outcome is the scored, classified and validated result of a complete
// response set. Display fields are rounded; Scores keeps full precision.
type Outcome struct {
	Scores           Scores
	CategoryScores   map[string]float64
	Primary          string
	Secondary        string
	ValidityWarnings []string
	CompletionRate   float64
	ResponseVariance float64
	ConfidenceScore  int
	BlindspotIndex   int
	Validity         Validity
}

// Compose runs scoring, classification and validity analysis. It refuses to
// produce an outcome unless every question in the bank is answered.
func Compose(bank *questionbank.Bank, responses []Response, p Policy) (*Outcome, error) {
	validity := Analyze(bank, responses, p)
	if validity.CompletionRate < 100 {
		return nil, &IncompleteAssessmentError{
			CompletionRate:     Round(validity.CompletionRate, 1),
			MissingQuestionIDs: validity.MissingQuestionIDs,
		}
	}

	scores := Score(bank, responses)
	class, err := Classify(scores, p.SecondaryGap)
	if err != nil {
		return nil, fmt.Errorf("classifying %s: %w", bank.Type(), err)
	}

	display := scores.Normalized()
	for id, v := range display {
		display[id] = Round(v, 1)
	}

	return &Outcome{
		Scores:           scores,
		CategoryScores:   display,
		Primary:          class.Primary,
		Secondary:        class.Secondary,
		ValidityWarnings: validity.Warnings,
		CompletionRate:   Round(validity.CompletionRate, 1),
		ResponseVariance: Round(validity.ResponseVariance, 2),
		ConfidenceScore:  validity.ConfidenceScore,
		BlindspotIndex:   validity.BlindspotIndex,
		Validity:         validity,
	}, nil
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
