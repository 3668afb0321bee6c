package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/model"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/lshigami/heartscan/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResultConsumer receives every committed Result. Consumers run after the
// commit; their failures are logged and never affect the Result.
type ResultConsumer interface {
	Name() string
	Consume(ctx context.Context, result dto.ResultDTO) error
}

// ResultService completes assessments and serves their results.
type ResultService interface {
	Complete(ctx context.Context, assessmentID string) (*dto.ResultDTO, error)
	Get(ctx context.Context, assessmentID string) (*dto.ResultDTO, error)
}

type resultService struct {
	db              *gorm.DB
	banks           *questionbank.Registry
	policy          scoring.Policy
	assessmentRepo  repository.AssessmentRepository
	responseRepo    repository.ResponseRepository
	resultRepo      repository.ResultRepository
	progressRepo    repository.ProgressRepository
	consumers       []ResultConsumer
	consumerTimeout time.Duration
}

func NewResultService(
	db *gorm.DB,
	banks *questionbank.Registry,
	policy scoring.Policy,
	assessmentRepo repository.AssessmentRepository,
	responseRepo repository.ResponseRepository,
	resultRepo repository.ResultRepository,
	progressRepo repository.ProgressRepository,
	consumers []ResultConsumer,
	consumerTimeout time.Duration,
) ResultService {
	if consumerTimeout <= 0 {
		consumerTimeout = 45 * time.Second
	}
	return &resultService{
		db:              db,
		banks:           banks,
		policy:          policy,
		assessmentRepo:  assessmentRepo,
		responseRepo:    responseRepo,
		resultRepo:      resultRepo,
		progressRepo:    progressRepo,
		consumers:       consumers,
		consumerTimeout: consumerTimeout,
	}
}

// Complete scores the assessment and commits the Result, the status change
// and the progress update in one transaction. The in_progress -> completed
// transition is conditional, so concurrent callers get AlreadyCompletedError.
func (s *resultService) Complete(ctx context.Context, assessmentID string) (*dto.ResultDTO, error) {
	now := timeNow().UTC()
	var (
		result     *model.Result
		assessment *model.Assessment
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		assessment, err = loadAssessment(ctx, s.assessmentRepo, tx, assessmentID)
		if err != nil {
			return err
		}
		if assessment.Status != model.StatusInProgress {
			return &AlreadyCompletedError{AssessmentID: assessmentID, Status: assessment.Status}
		}
		bank, ok := s.banks.Get(assessment.AssessmentType)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAssessmentType, assessment.AssessmentType)
		}

		rows, err := s.responseRepo.FindByAssessment(ctx, tx, assessmentID)
		if err != nil {
			return fmt.Errorf("failed to load responses: %w", err)
		}
		outcome, err := scoring.Compose(bank, toScoringResponses(rows), s.policy)
		if err != nil {
			return err
		}

		moved, err := s.assessmentRepo.Transition(ctx, tx, assessmentID, model.StatusInProgress, model.StatusCompleted, now)
		if err != nil {
			return fmt.Errorf("failed to mark assessment completed: %w", err)
		}
		if !moved {
			return &AlreadyCompletedError{AssessmentID: assessmentID, Status: model.StatusCompleted}
		}

		result = newResult(assessment, outcome, now)
		if err := s.resultRepo.Create(ctx, tx, result); err != nil {
			return fmt.Errorf("failed to store result: %w", err)
		}
		if err := s.progressRepo.RecordCompletion(ctx, tx, assessment.UserID, assessment.AssessmentType, assessmentID, now, now.Add(bank.RetakeAfter())); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		return nil
	})
	if err != nil {
		logCompletionFailure(err, assessmentID)
		return nil, err
	}

	resp := toResultDTO(result, assessment.UserID)
	log.Info().
		Str("assessmentID", assessmentID).
		Str("userID", assessment.UserID).
		Str("primary", resp.Primary).
		Int("confidence", resp.ConfidenceScore).
		Int("blindspotIndex", resp.BlindspotIndex).
		Strs("warnings", resp.ValidityWarnings).
		Msg("Assessment completed")

	s.dispatch(*resp)
	return resp, nil
}

func logCompletionFailure(err error, assessmentID string) {
	var (
		incomplete *IncompleteAssessmentError
		done       *AlreadyCompletedError
	)
	switch {
	case errors.As(err, &incomplete):
		log.Info().Str("assessmentID", assessmentID).Float64("completionRate", incomplete.CompletionRate).Msg("Complete: assessment not fully answered")
	case errors.As(err, &done), errors.Is(err, ErrNotFound):
		log.Warn().Err(err).Str("assessmentID", assessmentID).Msg("Complete: rejected")
	default:
		log.Error().Err(err).Str("assessmentID", assessmentID).Msg("Complete: transaction failed")
	}
}

// dispatch hands the committed result to every consumer in the background.
func (s *resultService) dispatch(result dto.ResultDTO) {
	for _, c := range s.consumers {
		go func(c ResultConsumer) {
			ctx, cancel := context.WithTimeout(context.Background(), s.consumerTimeout)
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("consumer", c.Name()).Str("assessmentID", result.AssessmentID).Msg("Result consumer panicked")
				}
			}()
			if err := c.Consume(ctx, result); err != nil {
				log.Error().Err(err).Str("consumer", c.Name()).Str("assessmentID", result.AssessmentID).Msg("Result consumer failed")
			}
		}(c)
	}
}

func (s *resultService) Get(ctx context.Context, assessmentID string) (*dto.ResultDTO, error) {
	assessment, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	result, err := s.resultRepo.FindByAssessmentID(ctx, assessmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no result for assessment %s (status %s)", ErrNotFound, assessmentID, assessment.Status)
	}
	if err != nil {
		log.Error().Err(err).Str("assessmentID", assessmentID).Msg("GetResult: repository error")
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	return toResultDTO(result, assessment.UserID), nil
}

func toScoringResponses(rows []model.Response) []scoring.Response {
	out := make([]scoring.Response, 0, len(rows))
	for _, r := range rows {
		sr := scoring.Response{QuestionID: r.QuestionID, ResponseTimeMs: r.ResponseTimeMs}
		if r.Value != nil {
			sr.Value = *r.Value
		}
		if r.SelectedOptionID != nil {
			sr.OptionID = *r.SelectedOptionID
		}
		out = append(out, sr)
	}
	return out
}

func newResult(a *model.Assessment, o *scoring.Outcome, now time.Time) *model.Result {
	r := &model.Result{
		ID:               uuid.NewString(),
		AssessmentID:     a.ID,
		AssessmentType:   a.AssessmentType,
		BankVersion:      a.BankVersion,
		CategoryScores:   datatypes.NewJSONType(o.CategoryScores),
		Primary:          o.Primary,
		ValidityWarnings: datatypes.NewJSONType(o.ValidityWarnings),
		CompletionRate:   o.CompletionRate,
		ResponseVariance: o.ResponseVariance,
		ConfidenceScore:  o.ConfidenceScore,
		BlindspotIndex:   o.BlindspotIndex,
		CreatedAt:        now,
	}
	if o.Secondary != "" {
		secondary := o.Secondary
		r.Secondary = &secondary
	}
	return r
}

func toResultDTO(r *model.Result, userID string) *dto.ResultDTO {
	warnings := r.ValidityWarnings.Data()
	if warnings == nil {
		warnings = []string{}
	}
	return &dto.ResultDTO{
		ID:               r.ID,
		AssessmentID:     r.AssessmentID,
		UserID:           userID,
		AssessmentType:   r.AssessmentType,
		BankVersion:      r.BankVersion,
		CategoryScores:   r.CategoryScores.Data(),
		Primary:          r.Primary,
		Secondary:        r.Secondary,
		ValidityWarnings: warnings,
		CompletionRate:   r.CompletionRate,
		ResponseVariance: r.ResponseVariance,
		ConfidenceScore:  r.ConfidenceScore,
		BlindspotIndex:   r.BlindspotIndex,
		CreatedAt:        r.CreatedAt,
	}
}
