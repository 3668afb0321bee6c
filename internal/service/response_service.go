package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/heartscan/internal/dto"
	"github.com/lshigami/heartscan/internal/model"
	"github.com/lshigami/heartscan/internal/questionbank"
	"github.com/lshigami/heartscan/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ResponseService collects answers for in-progress assessments.
type ResponseService interface {
	Submit(ctx context.Context, assessmentID string, req dto.AnswerRequest) (*dto.ResponseDTO, error)
	// SubmitBatch validates every answer before storing any of them.
	SubmitBatch(ctx context.Context, assessmentID string, req dto.BatchAnswerRequest) ([]dto.ResponseDTO, error)
	List(ctx context.Context, assessmentID string) ([]dto.ResponseDTO, error)
}

type responseService struct {
	db             *gorm.DB
	banks          *questionbank.Registry
	assessmentRepo repository.AssessmentRepository
	responseRepo   repository.ResponseRepository
}

func NewResponseService(
	db *gorm.DB,
	banks *questionbank.Registry,
	assessmentRepo repository.AssessmentRepository,
	responseRepo repository.ResponseRepository,
) ResponseService {
	return &responseService{db: db, banks: banks, assessmentRepo: assessmentRepo, responseRepo: responseRepo}
}

func (s *responseService) Submit(ctx context.Context, assessmentID string, req dto.AnswerRequest) (*dto.ResponseDTO, error) {
	stored, err := s.store(ctx, assessmentID, []dto.AnswerRequest{req})
	if err != nil {
		return nil, err
	}
	return &stored[0], nil
}

func (s *responseService) SubmitBatch(ctx context.Context, assessmentID string, req dto.BatchAnswerRequest) ([]dto.ResponseDTO, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &ValidationError{Field: "answers", Reason: err.Error()}
	}
	return s.store(ctx, assessmentID, req.Answers)
}

func (s *responseService) store(ctx context.Context, assessmentID string, answers []dto.AnswerRequest) ([]dto.ResponseDTO, error) {
	assessment, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Status != model.StatusInProgress {
		return nil, &AlreadyCompletedError{AssessmentID: assessmentID, Status: assessment.Status}
	}
	bank, ok := s.banks.Get(assessment.AssessmentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAssessmentType, assessment.AssessmentType)
	}

	rows := make([]model.Response, 0, len(answers))
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		row, err := buildResponse(bank, assessmentID, a)
		if err != nil {
			return nil, err
		}
		if seen[row.QuestionID] {
			return nil, invalid("question_id", "question %s answered more than once", row.QuestionID)
		}
		seen[row.QuestionID] = true
		rows = append(rows, row)
	}

	var stored []model.Response
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.assessmentRepo.FindByID(ctx, tx, assessmentID)
		if err != nil {
			return fmt.Errorf("failed to reload assessment: %w", err)
		}
		if current.Status != model.StatusInProgress {
			return &AlreadyCompletedError{AssessmentID: assessmentID, Status: current.Status}
		}
		if err := s.responseRepo.Upsert(ctx, tx, rows); err != nil {
			return fmt.Errorf("failed to store responses: %w", err)
		}
		stored, err = s.responseRepo.FindByAssessment(ctx, tx, assessmentID)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("assessmentID", assessmentID).Int("answerCount", len(rows)).Msg("Submit: transaction failed")
		return nil, err
	}

	byQuestion := make(map[string]model.Response, len(stored))
	for _, r := range stored {
		byQuestion[r.QuestionID] = r
	}
	out := make([]dto.ResponseDTO, 0, len(rows))
	for _, r := range rows {
		saved := byQuestion[r.QuestionID]
		var d dto.ResponseDTO
		if err := copier.Copy(&d, &saved); err != nil {
			return nil, fmt.Errorf("error preparing response: %w", err)
		}
		out = append(out, d)
	}
	log.Debug().Str("assessmentID", assessmentID).Int("answerCount", len(rows)).Msg("Responses stored")
	return out, nil
}

func (s *responseService) List(ctx context.Context, assessmentID string) ([]dto.ResponseDTO, error) {
	if _, err := loadAssessment(ctx, s.assessmentRepo, nil, assessmentID); err != nil {
		return nil, err
	}
	responses, err := s.responseRepo.FindByAssessment(ctx, nil, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	var out []dto.ResponseDTO
	if err := copier.Copy(&out, &responses); err != nil {
		return nil, fmt.Errorf("error preparing responses: %w", err)
	}
	if out == nil {
		out = []dto.ResponseDTO{}
	}
	return out, nil
}

// buildResponse validates one answer against the bank.
func buildResponse(bank *questionbank.Bank, assessmentID string, a dto.AnswerRequest) (model.Response, error) {
	if err := validate.Struct(a); err != nil {
		return model.Response{}, &ValidationError{Field: "answer", Reason: err.Error()}
	}
	q, ok := bank.Question(a.QuestionID)
	if !ok {
		return model.Response{}, invalid("question_id", "question %s is not part of %s", a.QuestionID, bank.Type())
	}

	row := model.Response{
		AssessmentID:   assessmentID,
		QuestionID:     q.ID,
		Kind:           string(q.Kind),
		ResponseTimeMs: a.ResponseTimeMs,
	}
	switch q.Kind {
	case questionbank.KindStatement:
		if a.SelectedOptionID != nil {
			return model.Response{}, invalid("selected_option_id", "statement %s takes a value, not an option", q.ID)
		}
		if a.Value == nil {
			return model.Response{}, invalid("value", "statement %s requires a value", q.ID)
		}
		if *a.Value < questionbank.MinLikert || *a.Value > questionbank.MaxLikert {
			return model.Response{}, invalid("value", "must be between %d and %d, got %d", questionbank.MinLikert, questionbank.MaxLikert, *a.Value)
		}
		v := *a.Value
		row.Value = &v

	case questionbank.KindScenario:
		if a.Value != nil {
			return model.Response{}, invalid("value", "scenario %s takes an option, not a value", q.ID)
		}
		if a.SelectedOptionID == nil || *a.SelectedOptionID == "" {
			return model.Response{}, invalid("selected_option_id", "scenario %s requires an option", q.ID)
		}
		if _, ok := bank.Option(q.ID, *a.SelectedOptionID); !ok {
			return model.Response{}, invalid("selected_option_id", "option %s does not belong to %s", *a.SelectedOptionID, q.ID)
		}
		opt := *a.SelectedOptionID
		row.SelectedOptionID = &opt
	}
	return row, nil
}
