package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/model"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InsightService is the shipped result consumer: it derives follow-up
// content keys and a narrative from each Result.
type InsightService interface {
	ResultConsumer
	Get(ctx context.Context, assessmentID string) (*dto.InsightDTO, error)
}

type insightService struct {
	banks          *questionbank.Registry
	llm            GeminiLLMService
	insightRepo    repository.InsightRepository
	assessmentRepo repository.AssessmentRepository
}

func NewInsightService(
	banks *questionbank.Registry,
	llm GeminiLLMService,
	insightRepo repository.InsightRepository,
	assessmentRepo repository.AssessmentRepository,
) InsightService {
	return &insightService{banks: banks, llm: llm, insightRepo: insightRepo, assessmentRepo: assessmentRepo}
}

func (s *insightService) Name() string { return "insight" }

func (s *insightService) Consume(ctx context.Context, result dto.ResultDTO) error {
	bank, ok := s.banks.Get(result.AssessmentType)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAssessmentType, result.AssessmentType)
	}

	source := model.InsightSourceTemplate
	narrative := templateNarrative(bank, result)
	if s.llm != nil {
		generated, err := s.llm.WriteNarrative(ctx, narrativePrompt(bank, result))
		switch {
		case err == nil:
			source = model.InsightSourceGemini
			narrative = generated
		case errors.Is(err, ErrLLMUnavailable):
		default:
			log.Warn().Err(err).Str("assessmentID", result.AssessmentID).Msg("Narrative generation failed, using template")
		}
	}

	insight := &model.Insight{
		AssessmentID:   result.AssessmentID,
		ResultID:       result.ID,
		Source:         source,
		Profile:        narrative.Profile,
		Interpretation: narrative.Interpretation,
		ContentKeys:    datatypes.NewJSONType(ContentKeys(result)),
	}
	if err := s.insightRepo.Save(ctx, insight); err != nil {
		return fmt.Errorf("failed to store insight: %w", err)
	}
	log.Info().Str("assessmentID", result.AssessmentID).Str("source", source).Msg("Insight stored")
	return nil
}

func (s *insightService) Get(ctx context.Context, assessmentID string) (*dto.InsightDTO, error) {
	if _, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID); err != nil {
		return nil, err
	}
	insight, err := s.insightRepo.FindByAssessmentID(ctx, assessmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no insight for assessment %s yet", ErrNotFound, assessmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load insight: %w", err)
	}
	keys := insight.ContentKeys.Data()
	if keys == nil {
		keys = []string{}
	}
	return &dto.InsightDTO{
		AssessmentID:   insight.AssessmentID,
		ResultID:       insight.ResultID,
		Source:         insight.Source,
		Profile:        insight.Profile,
		Interpretation: insight.Interpretation,
		ContentKeys:    keys,
		CreatedAt:      insight.CreatedAt,
	}, nil
}

// ContentKeys lists the keys a content layer uses to pick scripts,
// interventions and tools, e.g. "attachment_style.primary.angstig".
func ContentKeys(result dto.ResultDTO) []string {
	keys := []string{result.AssessmentType + ".primary." + result.Primary}
	if result.Secondary != nil {
		keys = append(keys, result.AssessmentType+".secondary."+*result.Secondary)
	}
	for _, w := range result.ValidityWarnings {
		keys = append(keys, result.AssessmentType+".warning."+strings.ToLower(w))
	}
	return keys
}

func confidenceBand(score int) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 60:
		return "moderate"
	default:
		return "low"
	}
}

func templateNarrative(bank *questionbank.Bank, result dto.ResultDTO) *Narrative {
	primary := bank.CategoryLabel(result.Primary)
	profile := fmt.Sprintf("Your strongest pattern in %s is %s (%.1f).", bank.Title(), primary, result.CategoryScores[result.Primary])
	if result.Secondary != nil {
		profile += fmt.Sprintf(" %s (%.1f) is also clearly present.", bank.CategoryLabel(*result.Secondary), result.CategoryScores[*result.Secondary])
	}

	var b strings.Builder
	switch confidenceBand(result.ConfidenceScore) {
	case "high":
		b.WriteString("Your answers were consistent, so this profile is a reliable snapshot.")
	case "moderate":
		b.WriteString("Your answers give a reasonable picture, though some patterns were less distinct.")
	default:
		b.WriteString("Treat this profile as a first impression; the answer pattern makes it less certain.")
	}
	if len(result.ValidityWarnings) > 0 {
		b.WriteString(" Notes: ")
		b.WriteString(strings.Join(result.ValidityWarnings, ", "))
		b.WriteString(".")
	}
	return &Narrative{Profile: profile, Interpretation: b.String()}
}

func narrativePrompt(bank *questionbank.Bank, result dto.ResultDTO) string {
	ids := make([]string, 0, len(result.CategoryScores))
	for id := range result.CategoryScores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := result.CategoryScores[ids[i]], result.CategoryScores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})

	var b strings.Builder
	b.WriteString("You are a relationship coach writing a short, supportive summary of a self-assessment.\n")
	fmt.Fprintf(&b, "Assessment: %s\n", bank.Title())
	b.WriteString("Category scores (0-100):\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "- %s: %.1f\n", bank.CategoryLabel(id), result.CategoryScores[id])
	}
	fmt.Fprintf(&b, "Primary: %s\n", bank.CategoryLabel(result.Primary))
	if result.Secondary != nil {
		fmt.Fprintf(&b, "Secondary: %s\n", bank.CategoryLabel(*result.Secondary))
	}
	fmt.Fprintf(&b, "Confidence: %s (%d/100)\n", confidenceBand(result.ConfidenceScore), result.ConfidenceScore)
	fmt.Fprintf(&b, "Blindspot index: %d/100 (higher means less consistent answering)\n", result.BlindspotIndex)
	if len(result.ValidityWarnings) > 0 {
		fmt.Fprintf(&b, "Validity warnings: %s\n", strings.Join(result.ValidityWarnings, ", "))
	}
	return b.String()
}
