package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/model"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// timeNow is replaced in tests.
var timeNow = time.Now

var validate = validator.New()

// AssessmentService manages the session lifecycle: start, abandon, read and
// retake eligibility.
type AssessmentService interface {
	Start(ctx context.Context, req dto.StartAssessmentRequest) (*dto.AssessmentDTO, error)
	Get(ctx context.Context, assessmentID string) (*dto.AssessmentDTO, error)
	Abandon(ctx context.Context, assessmentID string) (*dto.AssessmentDTO, error)
	History(ctx context.Context, userID, assessmentType string) ([]dto.AssessmentDTO, error)
	GetProgress(ctx context.Context, userID, assessmentType string) (*dto.ProgressDTO, error)
}

type assessmentService struct {
	db             *gorm.DB
	banks          *questionbank.Registry
	assessmentRepo repository.AssessmentRepository
	responseRepo   repository.ResponseRepository
	progressRepo   repository.ProgressRepository
}

func NewAssessmentService(
	db *gorm.DB,
	banks *questionbank.Registry,
	assessmentRepo repository.AssessmentRepository,
	responseRepo repository.ResponseRepository,
	progressRepo repository.ProgressRepository,
) AssessmentService {
	return &assessmentService{
		db:             db,
		banks:          banks,
		assessmentRepo: assessmentRepo,
		responseRepo:   responseRepo,
		progressRepo:   progressRepo,
	}
}

func (s *assessmentService) bank(assessmentType string) (*questionbank.Bank, error) {
	bank, ok := s.banks.Get(assessmentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssessmentType, assessmentType)
	}
	return bank, nil
}

func (s *assessmentService) Start(ctx context.Context, req dto.StartAssessmentRequest) (*dto.AssessmentDTO, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	bank, err := s.bank(req.AssessmentType)
	if err != nil {
		return nil, err
	}
	intake, err := validateIntake(bank.Intake(), req.MicroIntake)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	assessment := model.Assessment{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		AssessmentType: bank.Type(),
		BankVersion:    bank.Version(),
		Status:         model.StatusInProgress,
		StartedAt:      now,
		MicroIntake:    intake,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, err := s.progressRepo.Find(ctx, tx, req.UserID, bank.Type())
		switch {
		case err == nil:
			if progress.CanRetakeAfter != nil && now.Before(*progress.CanRetakeAfter) {
				return &RetakeCooldownError{AssessmentType: bank.Type(), CanRetakeAfter: progress.CanRetakeAfter.UTC()}
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load progress: %w", err)
		}

		// A fresh start supersedes any unfinished session of the same type.
		abandoned, err := s.assessmentRepo.AbandonInProgress(ctx, tx, req.UserID, bank.Type(), now)
		if err != nil {
			return fmt.Errorf("failed to abandon previous sessions: %w", err)
		}
		if abandoned > 0 {
			log.Info().Str("userID", req.UserID).Str("assessmentType", bank.Type()).Int64("count", abandoned).Msg("Abandoned unfinished assessments on restart")
		}

		if err := s.assessmentRepo.Create(ctx, tx, &assessment); err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}
		return nil
	})
	if err != nil {
		var cooldown *RetakeCooldownError
		if !errors.As(err, &cooldown) {
			log.Error().Err(err).Str("userID", req.UserID).Str("assessmentType", req.AssessmentType).Msg("Start: transaction failed")
		}
		return nil, err
	}

	log.Info().Str("assessmentID", assessment.ID).Str("userID", req.UserID).Str("assessmentType", bank.Type()).Msg("Assessment started")
	return toAssessmentDTO(&assessment, 0, bank.Len())
}

func loadAssessment(ctx context.Context, repo repository.AssessmentRepository, tx *gorm.DB, assessmentID string) (*model.Assessment, error) {
	assessment, err := repo.FindByID(ctx, tx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assessment %s", ErrNotFound, assessmentID)
		}
		log.Error().Err(err).Str("assessmentID", assessmentID).Msg("Failed to load assessment")
		return nil, fmt.Errorf("failed to load assessment %s: %w", assessmentID, err)
	}
	return assessment, nil
}

func (s *assessmentService) Get(ctx context.Context, assessmentID string) (*dto.AssessmentDTO, error) {
	assessment, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	answered, err := s.responseRepo.CountByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	total := 0
	if bank, ok := s.banks.Get(assessment.AssessmentType); ok {
		total = bank.Len()
	}
	return toAssessmentDTO(assessment, int(answered), total)
}

func (s *assessmentService) Abandon(ctx context.Context, assessmentID string) (*dto.AssessmentDTO, error) {
	assessment, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Status != model.StatusInProgress {
		return nil, &AlreadyCompletedError{AssessmentID: assessmentID, Status: assessment.Status}
	}

	moved, err := s.assessmentRepo.Transition(ctx, nil, assessmentID, model.StatusInProgress, model.StatusAbandoned, timeNow().UTC())
	if err != nil {
		log.Error().Err(err).Str("assessmentID", assessmentID).Msg("Abandon: status update failed")
		return nil, fmt.Errorf("failed to abandon assessment: %w", err)
	}
	if !moved {
		current, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID)
		if err != nil {
			return nil, err
		}
		return nil, &AlreadyCompletedError{AssessmentID: assessmentID, Status: current.Status}
	}

	log.Info().Str("assessmentID", assessmentID).Msg("Assessment abandoned")
	return s.Get(ctx, assessmentID)
}

func (s *assessmentService) History(ctx context.Context, userID, assessmentType string) ([]dto.AssessmentDTO, error) {
	if assessmentType != "" {
		if _, err := s.bank(assessmentType); err != nil {
			return nil, err
		}
	}
	assessments, err := s.assessmentRepo.FindAllByUser(ctx, userID, assessmentType)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("History: repository error")
		return nil, fmt.Errorf("error fetching assessments: %w", err)
	}

	dtos := make([]dto.AssessmentDTO, 0, len(assessments))
	for i := range assessments {
		answered, err := s.responseRepo.CountByAssessment(ctx, assessments[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count responses: %w", err)
		}
		total := 0
		if bank, ok := s.banks.Get(assessments[i].AssessmentType); ok {
			total = bank.Len()
		}
		d, err := toAssessmentDTO(&assessments[i], int(answered), total)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *d)
	}
	return dtos, nil
}

func (s *assessmentService) GetProgress(ctx context.Context, userID, assessmentType string) (*dto.ProgressDTO, error) {
	if _, err := s.bank(assessmentType); err != nil {
		return nil, err
	}
	progress, err := s.progressRepo.Find(ctx, nil, userID, assessmentType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.ProgressDTO{UserID: userID, AssessmentType: assessmentType, CanRetakeNow: true}, nil
	}
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Str("assessmentType", assessmentType).Msg("GetProgress: repository error")
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var resp dto.ProgressDTO
	if err := copier.Copy(&resp, progress); err != nil {
		return nil, fmt.Errorf("error preparing progress response: %w", err)
	}
	resp.CanRetakeNow = progress.CanRetakeAfter == nil || !timeNow().Before(*progress.CanRetakeAfter)
	return &resp, nil
}

func toAssessmentDTO(a *model.Assessment, answered, total int) (*dto.AssessmentDTO, error) {
	var resp dto.AssessmentDTO
	if err := copier.Copy(&resp, a); err != nil {
		log.Error().Err(err).Msg("Failed to copy Assessment model to AssessmentDTO")
		return nil, fmt.Errorf("error preparing assessment response: %w", err)
	}
	if len(a.MicroIntake) > 0 {
		resp.MicroIntake = map[string]interface{}(a.MicroIntake)
	}
	resp.AnsweredCount = answered
	resp.TotalQuestions = total
	return &resp, nil
}
